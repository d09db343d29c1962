package payroll

import "context"

// StoreAPI is the persistence surface the payroll service depends on.
type StoreAPI interface {
	UpsertAttendance(ctx context.Context, rec AttendanceRecord) (string, error)
	MonthAttendance(ctx context.Context, employeeID string, month, year int) ([]AttendanceRecord, error)

	EmployeeInfo(ctx context.Context, employeeID string) (EmployeeInfo, error)
	ActiveEmployees(ctx context.Context) ([]EmployeeInfo, error)

	InsertSalary(ctx context.Context, rec SalaryRecord) (string, error)
	SalaryByID(ctx context.Context, id string) (SalaryRecord, error)
	ListSalaries(ctx context.Context, month, year, limit, offset int) ([]SalaryRecord, int, error)
	EmployeeSalaries(ctx context.Context, employeeID string, limit int) ([]SalaryRecord, error)
	ExistingSalaryEmployees(ctx context.Context, month, year int) (map[string]bool, error)

	MarkPaid(ctx context.Context, id, mode, reference, notes string) error
	MarkOnHold(ctx context.Context, id, notes string) error
}
