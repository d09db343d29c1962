package payroll

import (
	"errors"
	"testing"
)

func TestSummarizeCounts(t *testing.T) {
	records := []AttendanceRecord{
		{Status: StatusPresent, WorkingHours: 8},
		{Status: StatusPresent, WorkingHours: 8},
		{Status: StatusAbsent},
		{Status: StatusHalfDay, WorkingHours: 4},
		{Status: StatusLeave},
		{Status: StatusHoliday},
	}

	sum := Summarize(records)
	if sum.PresentDays != 2 || sum.AbsentDays != 1 || sum.HalfDays != 1 ||
		sum.LeaveDays != 1 || sum.HolidayDays != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.TotalWorkingHours != 20 {
		t.Fatalf("total working hours = %v, want 20", sum.TotalWorkingHours)
	}
	if sum.TotalWorkingDays != DefaultWorkingDays {
		t.Fatalf("total working days = %d, want %d", sum.TotalWorkingDays, DefaultWorkingDays)
	}
}

func TestComputeGrossMonthly(t *testing.T) {
	sum := AttendanceSummary{AbsentDays: 2, TotalWorkingDays: 26}

	gross, deduction, err := ComputeGross(SalaryTypeMonthly, 30000, sum)
	if err != nil {
		t.Fatalf("ComputeGross: %v", err)
	}
	if gross != 30000 {
		t.Fatalf("gross = %v, want 30000", gross)
	}
	// 30000 / 26 * 2 = 2307.6923..., rounded to 2 decimals.
	if deduction != 2307.69 {
		t.Fatalf("absent deduction = %v, want 2307.69", deduction)
	}
}

func TestComputeGrossMonthlyZeroDivisorFallsBack(t *testing.T) {
	sum := AttendanceSummary{AbsentDays: 1}

	_, deduction, err := ComputeGross(SalaryTypeMonthly, 26000, sum)
	if err != nil {
		t.Fatalf("ComputeGross: %v", err)
	}
	if deduction != 1000 {
		t.Fatalf("absent deduction = %v, want 1000", deduction)
	}
}

func TestComputeGrossDaily(t *testing.T) {
	sum := AttendanceSummary{PresentDays: 20, HalfDays: 3, AbsentDays: 2}

	gross, deduction, err := ComputeGross(SalaryTypeDaily, 800, sum)
	if err != nil {
		t.Fatalf("ComputeGross: %v", err)
	}
	// 800 * (20 + 1.5) = 17200; absences simply earn nothing.
	if gross != 17200 {
		t.Fatalf("gross = %v, want 17200", gross)
	}
	if deduction != 0 {
		t.Fatalf("absent deduction = %v, want 0", deduction)
	}
}

func TestComputeGrossHourly(t *testing.T) {
	sum := AttendanceSummary{TotalWorkingHours: 162.5}

	gross, _, err := ComputeGross(SalaryTypeHourly, 150, sum)
	if err != nil {
		t.Fatalf("ComputeGross: %v", err)
	}
	if gross != 24375 {
		t.Fatalf("gross = %v, want 24375", gross)
	}
}

func TestComputeGrossUnknownType(t *testing.T) {
	_, _, err := ComputeGross("Weekly", 1000, AttendanceSummary{})
	if !errors.Is(err, ErrUnknownSalaryType) {
		t.Fatalf("err = %v, want ErrUnknownSalaryType", err)
	}
}

func TestComputeNet(t *testing.T) {
	adj := Adjustments{
		Bonus:            1000,
		Incentives:       500,
		OvertimeAmount:   250.50,
		LatePenalty:      100,
		AdvanceDeduction: 2000,
		OtherDeductions:  49.50,
	}

	totalDeductions, net := ComputeNet(30000, 2307.69, adj)
	if totalDeductions != 4457.19 {
		t.Fatalf("total deductions = %v, want 4457.19", totalDeductions)
	}
	// 30000 + 1750.50 - 4457.19
	if net != 27293.31 {
		t.Fatalf("net = %v, want 27293.31", net)
	}
}
