package notifications

const (
	TypeCoinsEarned     = "coins_earned"
	TypeCoinsRedeemed   = "coins_redeemed"
	TypeCoinsAdjusted   = "coins_adjusted"
	TypeCoinsExpired    = "coins_expired"
	TypeSalaryGenerated = "salary_generated"
	TypeSalaryPaid      = "salary_paid"
)
