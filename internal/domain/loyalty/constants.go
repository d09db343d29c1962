package loyalty

const (
	TxEarned       = "earned"
	TxRedeemed     = "redeemed"
	TxExpired      = "expired"
	TxManualAdd    = "manual_add"
	TxManualRemove = "manual_remove"

	ReferenceOrder       = "order"
	ReferenceTransaction = "coin_transaction"
	ReferenceAdjustment  = "manual_adjustment"
)
