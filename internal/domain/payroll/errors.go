package payroll

import "errors"

var (
	ErrSalaryExists       = errors.New("salary already generated for this employee and period")
	ErrSalaryNotFound     = errors.New("salary record not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrNotPending         = errors.New("salary is not pending payment")
	ErrUnknownSalaryType  = errors.New("unknown salary type")
	ErrInvalidPeriod      = errors.New("invalid month or year")
	ErrInactiveEmployee   = errors.New("employee is not active")
	ErrInvalidAttendance  = errors.New("invalid attendance record")
	ErrPayslipUnavailable = errors.New("payslip can only be generated for paid salaries")
)
