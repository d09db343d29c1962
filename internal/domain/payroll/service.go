package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cryptoutil "retailops/internal/platform/crypto"
	"retailops/internal/platform/metrics"
)

// Notifier delivers best-effort notifications. Failures are logged by the
// implementation, never surfaced to the payroll flow.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, body string)
}

type Service struct {
	store      StoreAPI
	notify     Notifier
	metrics    *metrics.Collector
	crypto     *cryptoutil.Service
	payslipDir string
	now        func() time.Time
}

func NewService(store StoreAPI, notify Notifier, collector *metrics.Collector, crypto *cryptoutil.Service, payslipDir string) *Service {
	if payslipDir == "" {
		payslipDir = "storage/payslips"
	}
	return &Service{
		store:      store,
		notify:     notify,
		metrics:    collector,
		crypto:     crypto,
		payslipDir: payslipDir,
		now:        time.Now,
	}
}

func (s *Service) MarkAttendance(ctx context.Context, rec AttendanceRecord) (string, error) {
	if rec.EmployeeID == "" || rec.Date.IsZero() {
		return "", ErrInvalidAttendance
	}
	valid := false
	for _, st := range AttendanceStatuses {
		if rec.Status == st {
			valid = true
			break
		}
	}
	if !valid {
		return "", ErrInvalidAttendance
	}
	if rec.WorkingHours < 0 || rec.WorkingHours > 24 {
		return "", ErrInvalidAttendance
	}
	return s.store.UpsertAttendance(ctx, rec)
}

func (s *Service) MonthAttendance(ctx context.Context, employeeID string, month, year int) ([]AttendanceRecord, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	return s.store.MonthAttendance(ctx, employeeID, month, year)
}

func (s *Service) AttendanceSummary(ctx context.Context, employeeID string, month, year int) (AttendanceSummary, error) {
	records, err := s.MonthAttendance(ctx, employeeID, month, year)
	if err != nil {
		return AttendanceSummary{}, err
	}
	return Summarize(records), nil
}

// GenerateSalary computes and persists the salary record for one employee
// and period. The unique index on (employee_id, month, year) is the final
// arbiter against duplicates; the insert maps its violation to ErrSalaryExists.
func (s *Service) GenerateSalary(ctx context.Context, employeeID string, month, year int, adj Adjustments) (SalaryRecord, error) {
	if err := validatePeriod(month, year); err != nil {
		return SalaryRecord{}, err
	}

	emp, err := s.store.EmployeeInfo(ctx, employeeID)
	if err != nil {
		return SalaryRecord{}, err
	}
	if emp.Status != "active" {
		return SalaryRecord{}, ErrInactiveEmployee
	}

	records, err := s.store.MonthAttendance(ctx, employeeID, month, year)
	if err != nil {
		return SalaryRecord{}, err
	}
	sum := Summarize(records)

	gross, absentDeduction, err := ComputeGross(emp.SalaryType, emp.BaseSalary, sum)
	if err != nil {
		return SalaryRecord{}, err
	}
	totalDeductions, net := ComputeNet(gross, absentDeduction, adj)

	rec := SalaryRecord{
		EmployeeID:        employeeID,
		Month:             month,
		Year:              year,
		PresentDays:       sum.PresentDays,
		AbsentDays:        sum.AbsentDays,
		HalfDays:          sum.HalfDays,
		LeaveDays:         sum.LeaveDays,
		HolidayDays:       sum.HolidayDays,
		TotalWorkingHours: sum.TotalWorkingHours,
		TotalWorkingDays:  sum.TotalWorkingDays,
		BaseSalary:        emp.BaseSalary,
		GrossSalary:       gross,
		Bonus:             adj.Bonus,
		Incentives:        adj.Incentives,
		OvertimeAmount:    adj.OvertimeAmount,
		AbsentDeduction:   absentDeduction,
		LatePenalty:       adj.LatePenalty,
		AdvanceDeduction:  adj.AdvanceDeduction,
		OtherDeductions:   adj.OtherDeductions,
		TotalDeductions:   totalDeductions,
		NetSalary:         net,
		PaymentStatus:     PaymentPending,
	}

	id, err := s.store.InsertSalary(ctx, rec)
	if err != nil {
		return SalaryRecord{}, err
	}
	rec.ID = id
	rec.GeneratedAt = s.now()

	if s.metrics != nil {
		s.metrics.IncSalariesGenerated()
	}
	if emp.UserID != "" {
		s.push(ctx, emp.UserID, "salary_generated", "Salary generated",
			fmt.Sprintf("Your salary for %d/%d has been generated.", month, year))
	}
	return rec, nil
}

// BulkGenerate runs GenerateSalary for every active employee that does not
// already have a record for the period. One employee failing does not stop
// the run; the result carries the per-outcome counts.
func (s *Service) BulkGenerate(ctx context.Context, month, year int) (BulkResult, error) {
	if err := validatePeriod(month, year); err != nil {
		return BulkResult{}, err
	}

	employees, err := s.store.ActiveEmployees(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	existing, err := s.store.ExistingSalaryEmployees(ctx, month, year)
	if err != nil {
		return BulkResult{}, err
	}

	var result BulkResult
	for _, emp := range employees {
		if existing[emp.ID] {
			result.SkippedCount++
			continue
		}
		if _, err := s.GenerateSalary(ctx, emp.ID, month, year, Adjustments{}); err != nil {
			slog.Warn("bulk salary generation failed for employee",
				"employeeId", emp.ID, "month", month, "year", year, "error", err)
			result.ErrorCount++
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func (s *Service) Salary(ctx context.Context, id string) (SalaryRecord, error) {
	return s.store.SalaryByID(ctx, id)
}

func (s *Service) Salaries(ctx context.Context, month, year, limit, offset int) ([]SalaryRecord, int, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListSalaries(ctx, month, year, limit, offset)
}

func (s *Service) EmployeeSalaries(ctx context.Context, employeeID string, limit int) ([]SalaryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	return s.store.EmployeeSalaries(ctx, employeeID, limit)
}

// RecordPayment moves a pending salary to Paid.
func (s *Service) RecordPayment(ctx context.Context, salaryID, mode, reference, notes string) (SalaryRecord, error) {
	if mode == "" {
		mode = "Bank Transfer"
	}
	if err := s.store.MarkPaid(ctx, salaryID, mode, reference, notes); err != nil {
		return SalaryRecord{}, err
	}
	rec, err := s.store.SalaryByID(ctx, salaryID)
	if err != nil {
		return SalaryRecord{}, err
	}

	if s.metrics != nil {
		s.metrics.IncSalariesPaid()
	}
	if emp, err := s.store.EmployeeInfo(ctx, rec.EmployeeID); err == nil && emp.UserID != "" {
		s.push(ctx, emp.UserID, "salary_paid", "Salary paid",
			fmt.Sprintf("Your salary for %d/%d has been paid.", rec.Month, rec.Year))
	}
	return rec, nil
}

// HoldSalary moves a pending salary to On Hold.
func (s *Service) HoldSalary(ctx context.Context, salaryID, notes string) (SalaryRecord, error) {
	if err := s.store.MarkOnHold(ctx, salaryID, notes); err != nil {
		return SalaryRecord{}, err
	}
	return s.store.SalaryByID(ctx, salaryID)
}

func (s *Service) push(ctx context.Context, userID, ntype, title, body string) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(ctx, userID, ntype, title, body)
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return ErrInvalidPeriod
	}
	return nil
}
