package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) UpsertAttendance(ctx context.Context, rec AttendanceRecord) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO attendance_records (employee_id, attendance_date, status, working_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, attendance_date)
		DO UPDATE SET status = EXCLUDED.status, working_hours = EXCLUDED.working_hours
		RETURNING id`,
		rec.EmployeeID, rec.Date, rec.Status, rec.WorkingHours,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return "", ErrEmployeeNotFound
		}
		return "", fmt.Errorf("upsert attendance: %w", err)
	}
	return id, nil
}

func (s *Store) MonthAttendance(ctx context.Context, employeeID string, month, year int) ([]AttendanceRecord, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, employee_id, attendance_date, status, working_hours
		FROM attendance_records
		WHERE employee_id = $1
		  AND EXTRACT(MONTH FROM attendance_date) = $2
		  AND EXTRACT(YEAR FROM attendance_date) = $3
		ORDER BY attendance_date`,
		employeeID, month, year)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	records := []AttendanceRecord{}
	for rows.Next() {
		var rec AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status, &rec.WorkingHours); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) EmployeeInfo(ctx context.Context, employeeID string) (EmployeeInfo, error) {
	var emp EmployeeInfo
	err := s.DB.QueryRow(ctx, `
		SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, salary_type, base_salary, status
		FROM employees
		WHERE id = $1`,
		employeeID,
	).Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.SalaryType, &emp.BaseSalary, &emp.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeInfo{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeInfo{}, fmt.Errorf("query employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]EmployeeInfo, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, COALESCE(user_id::text, ''), first_name, last_name, email, salary_type, base_salary, status
		FROM employees
		WHERE status = 'active'
		ORDER BY first_name, last_name`)
	if err != nil {
		return nil, fmt.Errorf("query active employees: %w", err)
	}
	defer rows.Close()

	employees := []EmployeeInfo{}
	for rows.Next() {
		var emp EmployeeInfo
		if err := rows.Scan(&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.SalaryType, &emp.BaseSalary, &emp.Status); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) InsertSalary(ctx context.Context, rec SalaryRecord) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO salary_records (
			employee_id, month, year,
			present_days, absent_days, half_days, leave_days, holiday_days,
			total_working_hours, total_working_days,
			base_salary, gross_salary, bonus, incentives, overtime_amount,
			absent_deduction, late_penalty, advance_deduction, other_deductions,
			total_deductions, net_salary, payment_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING id`,
		rec.EmployeeID, rec.Month, rec.Year,
		rec.PresentDays, rec.AbsentDays, rec.HalfDays, rec.LeaveDays, rec.HolidayDays,
		rec.TotalWorkingHours, rec.TotalWorkingDays,
		rec.BaseSalary, rec.GrossSalary, rec.Bonus, rec.Incentives, rec.OvertimeAmount,
		rec.AbsentDeduction, rec.LatePenalty, rec.AdvanceDeduction, rec.OtherDeductions,
		rec.TotalDeductions, rec.NetSalary, rec.PaymentStatus,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return "", ErrSalaryExists
			case "23503":
				return "", ErrEmployeeNotFound
			}
		}
		return "", fmt.Errorf("insert salary: %w", err)
	}
	return id, nil
}

const salaryColumns = `
	id, employee_id, month, year,
	present_days, absent_days, half_days, leave_days, holiday_days,
	total_working_hours, total_working_days,
	base_salary, gross_salary, bonus, incentives, overtime_amount,
	absent_deduction, late_penalty, advance_deduction, other_deductions,
	total_deductions, net_salary,
	payment_status, payment_date, COALESCE(payment_mode, ''),
	COALESCE(transaction_reference, ''), COALESCE(payment_notes, ''), generated_at`

func scanSalary(row pgx.Row) (SalaryRecord, error) {
	var rec SalaryRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year,
		&rec.PresentDays, &rec.AbsentDays, &rec.HalfDays, &rec.LeaveDays, &rec.HolidayDays,
		&rec.TotalWorkingHours, &rec.TotalWorkingDays,
		&rec.BaseSalary, &rec.GrossSalary, &rec.Bonus, &rec.Incentives, &rec.OvertimeAmount,
		&rec.AbsentDeduction, &rec.LatePenalty, &rec.AdvanceDeduction, &rec.OtherDeductions,
		&rec.TotalDeductions, &rec.NetSalary,
		&rec.PaymentStatus, &rec.PaymentDate, &rec.PaymentMode,
		&rec.TransactionReference, &rec.PaymentNotes, &rec.GeneratedAt,
	)
	return rec, err
}

func (s *Store) SalaryByID(ctx context.Context, id string) (SalaryRecord, error) {
	rec, err := scanSalary(s.DB.QueryRow(ctx,
		`SELECT `+salaryColumns+` FROM salary_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryRecord{}, ErrSalaryNotFound
	}
	if err != nil {
		return SalaryRecord{}, fmt.Errorf("query salary: %w", err)
	}
	return rec, nil
}

func (s *Store) ListSalaries(ctx context.Context, month, year, limit, offset int) ([]SalaryRecord, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM salary_records WHERE month = $1 AND year = $2`,
		month, year,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count salaries: %w", err)
	}

	rows, err := s.DB.Query(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_records
		WHERE month = $1 AND year = $2
		ORDER BY generated_at DESC
		LIMIT $3 OFFSET $4`,
		month, year, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query salaries: %w", err)
	}
	defer rows.Close()

	records := []SalaryRecord{}
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan salary: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *Store) EmployeeSalaries(ctx context.Context, employeeID string, limit int) ([]SalaryRecord, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+salaryColumns+`
		FROM salary_records
		WHERE employee_id = $1
		ORDER BY year DESC, month DESC
		LIMIT $2`,
		employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query employee salaries: %w", err)
	}
	defer rows.Close()

	records := []SalaryRecord{}
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salary: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) ExistingSalaryEmployees(ctx context.Context, month, year int) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx,
		`SELECT employee_id FROM salary_records WHERE month = $1 AND year = $2`,
		month, year)
	if err != nil {
		return nil, fmt.Errorf("query existing salaries: %w", err)
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan employee id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// MarkPaid transitions a pending salary to Paid. The status guard lives in
// the WHERE clause so two concurrent payments cannot both succeed.
func (s *Store) MarkPaid(ctx context.Context, id, mode, reference, notes string) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE salary_records
		SET payment_status = 'Paid',
		    payment_date = now(),
		    payment_mode = $2,
		    transaction_reference = NULLIF($3, ''),
		    payment_notes = NULLIF($4, '')
		WHERE id = $1 AND payment_status = 'Pending'`,
		id, mode, reference, notes)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.paymentGuardError(ctx, id)
	}
	return nil
}

func (s *Store) MarkOnHold(ctx context.Context, id, notes string) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE salary_records
		SET payment_status = 'On Hold',
		    payment_notes = NULLIF($2, '')
		WHERE id = $1 AND payment_status = 'Pending'`,
		id, notes)
	if err != nil {
		return fmt.Errorf("mark on hold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.paymentGuardError(ctx, id)
	}
	return nil
}

func (s *Store) paymentGuardError(ctx context.Context, id string) error {
	var status string
	err := s.DB.QueryRow(ctx,
		`SELECT payment_status FROM salary_records WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSalaryNotFound
	}
	if err != nil {
		return fmt.Errorf("query salary status: %w", err)
	}
	return ErrNotPending
}
