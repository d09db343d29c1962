package auth

const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleCashier  = "Cashier"
	RoleCustomer = "Customer"
)

const (
	PermEmployeesRead   = "employees.read"
	PermEmployeesWrite  = "employees.write"
	PermAttendanceRead  = "attendance.read"
	PermAttendanceWrite = "attendance.write"
	PermPayrollRead     = "payroll.read"
	PermPayrollGenerate = "payroll.generate"
	PermPayrollPay      = "payroll.pay"
	PermLoyaltyRead     = "loyalty.read"
	PermLoyaltyEarn     = "loyalty.earn"
	PermLoyaltyRedeem   = "loyalty.redeem"
	PermLoyaltyAdjust   = "loyalty.adjust"
	PermLoyaltySettings = "loyalty.settings"
	PermReportsRead     = "reports.read"
	PermAuditRead       = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermPayrollRead,
	PermPayrollGenerate,
	PermPayrollPay,
	PermLoyaltyRead,
	PermLoyaltyEarn,
	PermLoyaltyRedeem,
	PermLoyaltyAdjust,
	PermLoyaltySettings,
	PermReportsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermPayrollRead,
		PermPayrollGenerate,
		PermPayrollPay,
		PermLoyaltyRead,
		PermLoyaltyEarn,
		PermLoyaltyRedeem,
		PermLoyaltyAdjust,
		PermLoyaltySettings,
		PermReportsRead,
		PermAuditRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermPayrollRead,
		PermPayrollGenerate,
		PermLoyaltyRead,
		PermLoyaltyEarn,
		PermReportsRead,
	},
	RoleCashier: {
		PermLoyaltyRead,
		PermLoyaltyEarn,
		PermLoyaltyRedeem,
	},
	RoleCustomer: {
		PermLoyaltyRead,
		PermLoyaltyRedeem,
	},
}
