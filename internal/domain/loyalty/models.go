package loyalty

import "time"

// Settings is the process-wide loyalty configuration. A single row backs
// it; DefaultSettings is the fallback when that row cannot be read.
type Settings struct {
	SystemEnabled     bool       `json:"isSystemEnabled"`
	CoinsPerRupee     float64    `json:"coinsPerRupee"`
	GlobalMultiplier  float64    `json:"globalMultiplier"`
	CoinExpiryDays    *int       `json:"coinExpiryDays,omitempty"`
	MinCoinsToRedeem  int64      `json:"minCoinsToRedeem"`
	MaxCoinsPerOrder  *int64     `json:"maxCoinsPerOrder,omitempty"`
	FestiveMultiplier float64    `json:"festiveMultiplier"`
	FestiveStart      *time.Time `json:"festiveStart,omitempty"`
	FestiveEnd        *time.Time `json:"festiveEnd,omitempty"`
	FestiveActive     bool       `json:"isFestiveActive"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// DefaultSettings is the only place fallback values are declared.
// Read paths degrade to this instead of failing.
func DefaultSettings() Settings {
	return Settings{
		SystemEnabled:     true,
		CoinsPerRupee:     0.10,
		GlobalMultiplier:  1.00,
		MinCoinsToRedeem:  10,
		FestiveMultiplier: 1.00,
		FestiveActive:     false,
	}
}

// Wallet is the denormalized per-user aggregate. The ledger is
// authoritative; Available always equals TotalEarned - TotalUsed.
type Wallet struct {
	UserID      string    `json:"userId"`
	TotalEarned int64     `json:"totalCoinsEarned"`
	TotalUsed   int64     `json:"totalCoinsUsed"`
	Available   int64     `json:"availableCoins"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Transaction is one immutable ledger entry. Amount is signed: positive
// for earned/manual_add, negative (or zero for expired markers) otherwise.
type Transaction struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Type          string     `json:"transactionType"`
	Amount        int64      `json:"coinsAmount"`
	ReferenceType string     `json:"referenceType,omitempty"`
	ReferenceID   string     `json:"referenceId,omitempty"`
	OrderID       string     `json:"orderId,omitempty"`
	ProductID     string     `json:"productId,omitempty"`
	Description   string     `json:"description,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ProductSettings overrides earn/redeem behavior per product.
// Auto-created with defaults on first lookup.
type ProductSettings struct {
	ProductID        string    `json:"productId"`
	CoinsPerPurchase int64     `json:"coinsEarnedPerPurchase"`
	CoinsToBuy       int64     `json:"coinsRequiredToBuy"`
	PurchaseEnabled  bool      `json:"isCoinPurchaseEnabled"`
	EarningEnabled   bool      `json:"isCoinEarningEnabled"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
