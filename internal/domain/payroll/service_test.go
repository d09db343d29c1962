package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type memStore struct {
	employees  map[string]EmployeeInfo
	attendance map[string][]AttendanceRecord
	salaries   map[string]SalaryRecord
	insertErr  map[string]error
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		employees:  map[string]EmployeeInfo{},
		attendance: map[string][]AttendanceRecord{},
		salaries:   map[string]SalaryRecord{},
		insertErr:  map[string]error{},
	}
}

func (m *memStore) addEmployee(id, salaryType string, base float64) {
	m.employees[id] = EmployeeInfo{
		ID:         id,
		UserID:     "user-" + id,
		FirstName:  "Test",
		LastName:   id,
		Email:      id + "@example.com",
		SalaryType: salaryType,
		BaseSalary: base,
		Status:     "active",
	}
}

func (m *memStore) UpsertAttendance(_ context.Context, rec AttendanceRecord) (string, error) {
	m.nextID++
	rec.ID = fmt.Sprintf("att-%d", m.nextID)
	m.attendance[rec.EmployeeID] = append(m.attendance[rec.EmployeeID], rec)
	return rec.ID, nil
}

func (m *memStore) MonthAttendance(_ context.Context, employeeID string, month, year int) ([]AttendanceRecord, error) {
	var out []AttendanceRecord
	for _, rec := range m.attendance[employeeID] {
		if int(rec.Date.Month()) == month && rec.Date.Year() == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) EmployeeInfo(_ context.Context, employeeID string) (EmployeeInfo, error) {
	emp, ok := m.employees[employeeID]
	if !ok {
		return EmployeeInfo{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *memStore) ActiveEmployees(context.Context) ([]EmployeeInfo, error) {
	var out []EmployeeInfo
	for _, emp := range m.employees {
		if emp.Status == "active" {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (m *memStore) InsertSalary(_ context.Context, rec SalaryRecord) (string, error) {
	if err := m.insertErr[rec.EmployeeID]; err != nil {
		return "", err
	}
	for _, existing := range m.salaries {
		if existing.EmployeeID == rec.EmployeeID && existing.Month == rec.Month && existing.Year == rec.Year {
			return "", ErrSalaryExists
		}
	}
	m.nextID++
	rec.ID = fmt.Sprintf("sal-%d", m.nextID)
	rec.GeneratedAt = time.Now()
	m.salaries[rec.ID] = rec
	return rec.ID, nil
}

func (m *memStore) SalaryByID(_ context.Context, id string) (SalaryRecord, error) {
	rec, ok := m.salaries[id]
	if !ok {
		return SalaryRecord{}, ErrSalaryNotFound
	}
	return rec, nil
}

func (m *memStore) ListSalaries(_ context.Context, month, year, limit, offset int) ([]SalaryRecord, int, error) {
	var out []SalaryRecord
	for _, rec := range m.salaries {
		if rec.Month == month && rec.Year == year {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}

func (m *memStore) EmployeeSalaries(_ context.Context, employeeID string, limit int) ([]SalaryRecord, error) {
	var out []SalaryRecord
	for _, rec := range m.salaries {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) ExistingSalaryEmployees(_ context.Context, month, year int) (map[string]bool, error) {
	out := map[string]bool{}
	for _, rec := range m.salaries {
		if rec.Month == month && rec.Year == year {
			out[rec.EmployeeID] = true
		}
	}
	return out, nil
}

func (m *memStore) MarkPaid(_ context.Context, id, mode, reference, notes string) error {
	rec, ok := m.salaries[id]
	if !ok {
		return ErrSalaryNotFound
	}
	if rec.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	now := time.Now()
	rec.PaymentStatus = PaymentPaid
	rec.PaymentDate = &now
	rec.PaymentMode = mode
	rec.TransactionReference = reference
	rec.PaymentNotes = notes
	m.salaries[id] = rec
	return nil
}

func (m *memStore) MarkOnHold(_ context.Context, id, notes string) error {
	rec, ok := m.salaries[id]
	if !ok {
		return ErrSalaryNotFound
	}
	if rec.PaymentStatus != PaymentPending {
		return ErrNotPending
	}
	rec.PaymentStatus = PaymentOnHold
	rec.PaymentNotes = notes
	m.salaries[id] = rec
	return nil
}

func markMonth(t *testing.T, store *memStore, employeeID string, month, year int, statuses []string) {
	t.Helper()
	for i, status := range statuses {
		hours := 0.0
		if status == StatusPresent {
			hours = 8
		}
		if status == StatusHalfDay {
			hours = 4
		}
		_, err := store.UpsertAttendance(context.Background(), AttendanceRecord{
			EmployeeID:   employeeID,
			Date:         time.Date(year, time.Month(month), i+1, 0, 0, 0, 0, time.UTC),
			Status:       status,
			WorkingHours: hours,
		})
		if err != nil {
			t.Fatalf("UpsertAttendance: %v", err)
		}
	}
}

func TestGenerateSalaryMonthlyWithAbsences(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeMonthly, 30000)
	markMonth(t, store, "e1", 1, 2026, []string{
		StatusPresent, StatusPresent, StatusAbsent, StatusAbsent, StatusPresent,
	})

	svc := NewService(store, nil, nil, nil, t.TempDir())
	rec, err := svc.GenerateSalary(ctx, "e1", 1, 2026, Adjustments{})
	if err != nil {
		t.Fatalf("GenerateSalary: %v", err)
	}
	if rec.AbsentDays != 2 {
		t.Fatalf("absent days = %d, want 2", rec.AbsentDays)
	}
	if rec.AbsentDeduction != 2307.69 {
		t.Fatalf("absent deduction = %v, want 2307.69", rec.AbsentDeduction)
	}
	if rec.NetSalary != 27692.31 {
		t.Fatalf("net salary = %v, want 27692.31", rec.NetSalary)
	}
	if rec.PaymentStatus != PaymentPending {
		t.Fatalf("payment status = %q, want %q", rec.PaymentStatus, PaymentPending)
	}
}

func TestGenerateSalaryDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeMonthly, 30000)

	svc := NewService(store, nil, nil, nil, t.TempDir())
	if _, err := svc.GenerateSalary(ctx, "e1", 1, 2026, Adjustments{}); err != nil {
		t.Fatalf("first GenerateSalary: %v", err)
	}
	if _, err := svc.GenerateSalary(ctx, "e1", 1, 2026, Adjustments{}); !errors.Is(err, ErrSalaryExists) {
		t.Fatalf("second GenerateSalary err = %v, want ErrSalaryExists", err)
	}
}

func TestGenerateSalaryRejectsInactiveAndUnknown(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeMonthly, 30000)
	emp := store.employees["e1"]
	emp.Status = "inactive"
	store.employees["e1"] = emp

	svc := NewService(store, nil, nil, nil, t.TempDir())
	if _, err := svc.GenerateSalary(ctx, "e1", 1, 2026, Adjustments{}); !errors.Is(err, ErrInactiveEmployee) {
		t.Fatalf("err = %v, want ErrInactiveEmployee", err)
	}
	if _, err := svc.GenerateSalary(ctx, "ghost", 1, 2026, Adjustments{}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("err = %v, want ErrEmployeeNotFound", err)
	}
	if _, err := svc.GenerateSalary(ctx, "e1", 13, 2026, Adjustments{}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestBulkGenerateCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 1; i <= 5; i++ {
		store.addEmployee(fmt.Sprintf("e%d", i), SalaryTypeMonthly, 20000)
	}
	store.insertErr["e3"] = errors.New("insert failed")

	svc := NewService(store, nil, nil, nil, t.TempDir())
	result, err := svc.BulkGenerate(ctx, 2, 2026)
	if err != nil {
		t.Fatalf("BulkGenerate: %v", err)
	}
	if result.SuccessCount != 4 || result.ErrorCount != 1 || result.SkippedCount != 0 {
		t.Fatalf("result = %+v, want 4 success / 1 error / 0 skipped", result)
	}

	// A second run skips everything already generated; the failing
	// employee is retried and fails again.
	result, err = svc.BulkGenerate(ctx, 2, 2026)
	if err != nil {
		t.Fatalf("BulkGenerate: %v", err)
	}
	if result.SuccessCount != 0 || result.ErrorCount != 1 || result.SkippedCount != 4 {
		t.Fatalf("result = %+v, want 0 success / 1 error / 4 skipped", result)
	}
}

func TestRecordPaymentTransitions(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeMonthly, 30000)

	svc := NewService(store, nil, nil, nil, t.TempDir())
	rec, err := svc.GenerateSalary(ctx, "e1", 3, 2026, Adjustments{})
	if err != nil {
		t.Fatalf("GenerateSalary: %v", err)
	}

	paid, err := svc.RecordPayment(ctx, rec.ID, "", "TXN-1", "")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if paid.PaymentStatus != PaymentPaid {
		t.Fatalf("payment status = %q, want %q", paid.PaymentStatus, PaymentPaid)
	}
	if paid.PaymentMode != "Bank Transfer" {
		t.Fatalf("payment mode = %q, want default Bank Transfer", paid.PaymentMode)
	}

	if _, err := svc.RecordPayment(ctx, rec.ID, "Cash", "", ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second payment err = %v, want ErrNotPending", err)
	}
	if _, err := svc.HoldSalary(ctx, rec.ID, "already paid"); !errors.Is(err, ErrNotPending) {
		t.Fatalf("hold after payment err = %v, want ErrNotPending", err)
	}
	if _, err := svc.RecordPayment(ctx, "missing", "", "", ""); !errors.Is(err, ErrSalaryNotFound) {
		t.Fatalf("missing salary err = %v, want ErrSalaryNotFound", err)
	}
}

func TestHoldSalary(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeDaily, 800)

	svc := NewService(store, nil, nil, nil, t.TempDir())
	rec, err := svc.GenerateSalary(ctx, "e1", 4, 2026, Adjustments{})
	if err != nil {
		t.Fatalf("GenerateSalary: %v", err)
	}

	held, err := svc.HoldSalary(ctx, rec.ID, "pending verification")
	if err != nil {
		t.Fatalf("HoldSalary: %v", err)
	}
	if held.PaymentStatus != PaymentOnHold {
		t.Fatalf("payment status = %q, want %q", held.PaymentStatus, PaymentOnHold)
	}
}

func TestMarkAttendanceValidation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, nil, nil, nil, t.TempDir())

	rec := AttendanceRecord{
		EmployeeID:   "e1",
		Date:         time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:       StatusPresent,
		WorkingHours: 8,
	}
	if _, err := svc.MarkAttendance(ctx, rec); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}

	bad := rec
	bad.Status = "Vacation"
	if _, err := svc.MarkAttendance(ctx, bad); !errors.Is(err, ErrInvalidAttendance) {
		t.Fatalf("invalid status err = %v, want ErrInvalidAttendance", err)
	}

	bad = rec
	bad.WorkingHours = 25
	if _, err := svc.MarkAttendance(ctx, bad); !errors.Is(err, ErrInvalidAttendance) {
		t.Fatalf("invalid hours err = %v, want ErrInvalidAttendance", err)
	}

	bad = rec
	bad.EmployeeID = ""
	if _, err := svc.MarkAttendance(ctx, bad); !errors.Is(err, ErrInvalidAttendance) {
		t.Fatalf("missing employee err = %v, want ErrInvalidAttendance", err)
	}
}

func TestAttendanceSummary(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addEmployee("e1", SalaryTypeMonthly, 30000)
	markMonth(t, store, "e1", 5, 2026, []string{
		StatusPresent, StatusHalfDay, StatusAbsent, StatusLeave,
	})

	svc := NewService(store, nil, nil, nil, t.TempDir())
	sum, err := svc.AttendanceSummary(ctx, "e1", 5, 2026)
	if err != nil {
		t.Fatalf("AttendanceSummary: %v", err)
	}
	if sum.PresentDays != 1 || sum.HalfDays != 1 || sum.AbsentDays != 1 || sum.LeaveDays != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
