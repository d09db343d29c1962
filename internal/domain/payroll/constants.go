package payroll

const (
	SalaryTypeMonthly = "Monthly"
	SalaryTypeDaily   = "Daily"
	SalaryTypeHourly  = "Hourly"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusHalfDay = "Half Day"
	StatusLeave   = "Leave"
	StatusHoliday = "Holiday"
)

const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
	PaymentOnHold  = "On Hold"
)

// DefaultWorkingDays is the payable-days divisor for monthly salaries
// when no per-store calendar is configured.
const DefaultWorkingDays = 26

var SalaryTypes = []string{SalaryTypeMonthly, SalaryTypeDaily, SalaryTypeHourly}

var AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave, StatusHoliday}
