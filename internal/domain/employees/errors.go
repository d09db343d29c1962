package employees

import "errors"

var (
	ErrNotFound       = errors.New("employee not found")
	ErrDuplicateEmail = errors.New("an employee with this email already exists")
	ErrInvalidInput   = errors.New("invalid employee input")
)
