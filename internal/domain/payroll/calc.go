package payroll

import "github.com/shopspring/decimal"

// Summarize rolls a month of attendance records into the counts the
// salary calculation works from. TotalWorkingDays stays at the default
// divisor; it is the basis for per-day rates, not the number of marked days.
func Summarize(records []AttendanceRecord) AttendanceSummary {
	sum := AttendanceSummary{TotalWorkingDays: DefaultWorkingDays}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			sum.PresentDays++
		case StatusAbsent:
			sum.AbsentDays++
		case StatusHalfDay:
			sum.HalfDays++
		case StatusLeave:
			sum.LeaveDays++
		case StatusHoliday:
			sum.HolidayDays++
		}
		sum.TotalWorkingHours += rec.WorkingHours
	}
	return sum
}

// ComputeGross derives the gross salary and the absence deduction for a
// period. Monthly employees earn the full base with absences deducted at
// base/workingDays per day; daily employees earn base per present day and
// half per half day; hourly employees earn base per recorded working hour.
func ComputeGross(salaryType string, baseSalary float64, sum AttendanceSummary) (gross, absentDeduction float64, err error) {
	base := decimal.NewFromFloat(baseSalary)

	switch salaryType {
	case SalaryTypeMonthly:
		days := sum.TotalWorkingDays
		if days <= 0 {
			days = DefaultWorkingDays
		}
		perDay := base.Div(decimal.NewFromInt(int64(days)))
		deduction := perDay.Mul(decimal.NewFromInt(int64(sum.AbsentDays)))
		return round2(base), round2(deduction), nil
	case SalaryTypeDaily:
		payable := decimal.NewFromInt(int64(sum.PresentDays)).
			Add(decimal.NewFromFloat(0.5).Mul(decimal.NewFromInt(int64(sum.HalfDays))))
		return round2(base.Mul(payable)), 0, nil
	case SalaryTypeHourly:
		return round2(base.Mul(decimal.NewFromFloat(sum.TotalWorkingHours))), 0, nil
	default:
		return 0, 0, ErrUnknownSalaryType
	}
}

// ComputeNet applies the manual adjustments to a computed gross.
func ComputeNet(gross, absentDeduction float64, adj Adjustments) (totalDeductions, net float64) {
	deductions := decimal.NewFromFloat(absentDeduction).
		Add(decimal.NewFromFloat(adj.LatePenalty)).
		Add(decimal.NewFromFloat(adj.AdvanceDeduction)).
		Add(decimal.NewFromFloat(adj.OtherDeductions))

	earned := decimal.NewFromFloat(gross).
		Add(decimal.NewFromFloat(adj.Bonus)).
		Add(decimal.NewFromFloat(adj.Incentives)).
		Add(decimal.NewFromFloat(adj.OvertimeAmount))

	return round2(deductions), round2(earned.Sub(deductions))
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
