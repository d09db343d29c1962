package loyalty

import (
	"context"
	"time"
)

type StoreAPI interface {
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	EnsureWallet(ctx context.Context, userID string) (Wallet, error)
	GetWallet(ctx context.Context, userID string) (Wallet, error)
	ApplyTransaction(ctx context.Context, t Transaction) (Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	GetOrCreateProductSettings(ctx context.Context, productID string) (ProductSettings, error)
	SaveProductSettings(ctx context.Context, ps ProductSettings) error
	ExpirableEarnings(ctx context.Context, asOf time.Time, limit int) ([]Transaction, error)
}
