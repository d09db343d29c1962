package employees

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

const employeeColumns = `
	id, COALESCE(user_id::text, ''), first_name, last_name, email,
	COALESCE(phone, ''), COALESCE(designation, ''),
	salary_type, base_salary, joining_date, status, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.Designation,
		&emp.SalaryType, &emp.BaseSalary, &emp.JoiningDate, &emp.Status,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (s *Store) Create(ctx context.Context, emp Employee) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO employees (
			user_id, first_name, last_name, email, phone, designation,
			salary_type, base_salary, joining_date, status
		) VALUES (NULLIF($1,'')::uuid, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7, $8, $9, $10)
		RETURNING `+employeeColumns,
		emp.UserID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Designation,
		emp.SalaryType, emp.BaseSalary, emp.JoiningDate, emp.Status)
	created, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, ErrDuplicateEmail
		}
		return Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, emp Employee) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE employees SET
			first_name = $2, last_name = $3, email = $4,
			phone = NULLIF($5,''), designation = NULLIF($6,''),
			salary_type = $7, base_salary = $8, joining_date = $9, status = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING `+employeeColumns,
		emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.Designation,
		emp.SalaryType, emp.BaseSalary, emp.JoiningDate, emp.Status)
	updated, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, ErrDuplicateEmail
		}
		return Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return updated, nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("query employee: %w", err)
	}
	return emp, nil
}

func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Employee, int, error) {
	countQuery := "SELECT COUNT(*) FROM employees"
	listQuery := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	if status != "" {
		countQuery += " WHERE status = $1"
		listQuery += " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	listQuery += fmt.Sprintf(" ORDER BY first_name, last_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

// Deactivate soft-deletes: payroll history keeps referencing the row.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE employees SET status = 'inactive', updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
