package payroll

import "time"

type AttendanceRecord struct {
	ID           string    `json:"id,omitempty"`
	EmployeeID   string    `json:"employeeId"`
	Date         time.Time `json:"attendanceDate"`
	Status       string    `json:"status"`
	WorkingHours float64   `json:"workingHours"`
}

type AttendanceSummary struct {
	PresentDays       int     `json:"presentDays"`
	AbsentDays        int     `json:"absentDays"`
	HalfDays          int     `json:"halfDays"`
	LeaveDays         int     `json:"leaveDays"`
	HolidayDays       int     `json:"holidayDays"`
	TotalWorkingHours float64 `json:"totalWorkingHours"`
	TotalWorkingDays  int     `json:"totalWorkingDays"`
}

// Adjustments are the manual inputs applied on top of the
// attendance-derived gross when a salary is generated.
type Adjustments struct {
	Bonus            float64 `json:"bonus"`
	Incentives       float64 `json:"incentives"`
	OvertimeAmount   float64 `json:"overtimeAmount"`
	LatePenalty      float64 `json:"latePenalty"`
	AdvanceDeduction float64 `json:"advanceDeduction"`
	OtherDeductions  float64 `json:"otherDeductions"`
}

type SalaryRecord struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`

	PresentDays       int     `json:"presentDays"`
	AbsentDays        int     `json:"absentDays"`
	HalfDays          int     `json:"halfDays"`
	LeaveDays         int     `json:"leaveDays"`
	HolidayDays       int     `json:"holidayDays"`
	TotalWorkingHours float64 `json:"totalWorkingHours"`
	TotalWorkingDays  int     `json:"totalWorkingDays"`

	BaseSalary       float64 `json:"baseSalary"`
	GrossSalary      float64 `json:"grossSalary"`
	Bonus            float64 `json:"bonus"`
	Incentives       float64 `json:"incentives"`
	OvertimeAmount   float64 `json:"overtimeAmount"`
	AbsentDeduction  float64 `json:"absentDeduction"`
	LatePenalty      float64 `json:"latePenalty"`
	AdvanceDeduction float64 `json:"advanceDeduction"`
	OtherDeductions  float64 `json:"otherDeductions"`
	TotalDeductions  float64 `json:"totalDeductions"`
	NetSalary        float64 `json:"netSalary"`

	PaymentStatus        string     `json:"paymentStatus"`
	PaymentDate          *time.Time `json:"paymentDate,omitempty"`
	PaymentMode          string     `json:"paymentMode,omitempty"`
	TransactionReference string     `json:"transactionReference,omitempty"`
	PaymentNotes         string     `json:"paymentNotes,omitempty"`
	GeneratedAt          time.Time  `json:"generatedAt"`
}

type EmployeeInfo struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId,omitempty"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	SalaryType string  `json:"salaryType"`
	BaseSalary float64 `json:"baseSalary"`
	Status     string  `json:"status"`
}

type BulkResult struct {
	SuccessCount int `json:"successCount"`
	ErrorCount   int `json:"errorCount"`
	SkippedCount int `json:"skippedCount"`
}
