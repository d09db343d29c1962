package loyalty

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"retailops/internal/platform/metrics"
)

// Notifier delivers best-effort user notifications. Failures are the
// notifier's problem; loyalty operations never fail because of one.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, body string)
}

type Service struct {
	store   StoreAPI
	notify  Notifier
	metrics *metrics.Collector
	now     func() time.Time
}

func NewService(store StoreAPI, notify Notifier, collector *metrics.Collector) *Service {
	return &Service{store: store, notify: notify, metrics: collector, now: time.Now}
}

// Settings returns the loyalty configuration, falling back to
// DefaultSettings when the row cannot be read. It never fails: degraded
// but functional beats erroring out of every accrual path.
func (s *Service) Settings(ctx context.Context) Settings {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		slog.Warn("loyalty settings unavailable, using defaults", "err", err)
		return DefaultSettings()
	}
	return settings
}

func (s *Service) UpdateSettings(ctx context.Context, settings Settings) error {
	return s.store.SaveSettings(ctx, settings)
}

func (s *Service) Wallet(ctx context.Context, userID string) (Wallet, error) {
	return s.store.GetWallet(ctx, userID)
}

// EnsureWallet creates the wallet row if missing. Safe to call
// repeatedly; uniqueness is enforced by the primary key, not by the
// caller.
func (s *Service) EnsureWallet(ctx context.Context, userID string) (Wallet, error) {
	if !s.Settings(ctx).SystemEnabled {
		return Wallet{}, ErrSystemDisabled
	}
	return s.store.EnsureWallet(ctx, userID)
}

type EarnInput struct {
	UserID      string
	OrderID     string
	ProductID   string
	Amount      float64
	Description string
}

// EarnCoins computes the grant for a purchase and applies it. A zero
// grant (disabled product, tiny amount) writes nothing and is not an
// error.
func (s *Service) EarnCoins(ctx context.Context, in EarnInput) (Transaction, error) {
	settings := s.Settings(ctx)
	if !settings.SystemEnabled {
		return Transaction{}, ErrSystemDisabled
	}

	now := s.now()
	var coins int64
	if in.ProductID != "" {
		ps, err := s.store.GetOrCreateProductSettings(ctx, in.ProductID)
		if err != nil {
			slog.Warn("product loyalty settings unavailable, using global rule", "productId", in.ProductID, "err", err)
			coins = CoinsEarned(settings, in.Amount, now)
		} else {
			if !ps.EarningEnabled {
				return Transaction{}, ErrEarningDisabled
			}
			coins = CoinsEarnedForProduct(settings, ps, in.Amount, now)
		}
	} else {
		coins = CoinsEarned(settings, in.Amount, now)
	}
	if coins == 0 {
		return Transaction{}, nil
	}

	if _, err := s.store.EnsureWallet(ctx, in.UserID); err != nil {
		return Transaction{}, err
	}

	entry := Transaction{
		UserID:      in.UserID,
		Type:        TxEarned,
		Amount:      coins,
		OrderID:     in.OrderID,
		ProductID:   in.ProductID,
		Description: in.Description,
	}
	if entry.OrderID != "" {
		entry.ReferenceType = ReferenceOrder
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("Earned %d coins on purchase", coins)
	}
	if settings.CoinExpiryDays != nil && *settings.CoinExpiryDays > 0 {
		expires := now.AddDate(0, 0, *settings.CoinExpiryDays)
		entry.ExpiresAt = &expires
	}

	applied, err := s.store.ApplyTransaction(ctx, entry)
	if err != nil {
		return Transaction{}, err
	}
	if s.metrics != nil {
		s.metrics.AddCoinsEarned(coins)
	}
	s.push(ctx, in.UserID, "coins_earned", "Coins earned",
		fmt.Sprintf("You earned %d coins.", coins))
	return applied, nil
}

type RedeemInput struct {
	UserID      string
	Coins       int64
	OrderID     string
	Description string
}

// RedeemCoins validates against settings and the wallet before any
// write; the store's constraints re-check under concurrency, so the
// balance can never go negative.
func (s *Service) RedeemCoins(ctx context.Context, in RedeemInput) (Transaction, error) {
	settings := s.Settings(ctx)
	wallet, err := s.store.GetWallet(ctx, in.UserID)
	if err != nil {
		return Transaction{}, err
	}
	if err := RedeemCheck(settings, wallet, in.Coins); err != nil {
		return Transaction{}, err
	}

	entry := Transaction{
		UserID:      in.UserID,
		Type:        TxRedeemed,
		Amount:      -in.Coins,
		OrderID:     in.OrderID,
		Description: in.Description,
	}
	if entry.OrderID != "" {
		entry.ReferenceType = ReferenceOrder
	}
	if entry.Description == "" {
		entry.Description = fmt.Sprintf("Redeemed %d coins", in.Coins)
	}

	applied, err := s.store.ApplyTransaction(ctx, entry)
	if err != nil {
		return Transaction{}, err
	}
	if s.metrics != nil {
		s.metrics.AddCoinsRedeemed(in.Coins)
	}
	s.push(ctx, in.UserID, "coins_redeemed", "Coins redeemed",
		fmt.Sprintf("You redeemed %d coins.", in.Coins))
	return applied, nil
}

type AdjustInput struct {
	UserID string
	Delta  int64
	Reason string
}

// AdjustCoins is the administrative correction path: positive deltas
// record manual_add, negative ones manual_remove.
func (s *Service) AdjustCoins(ctx context.Context, in AdjustInput) (Transaction, error) {
	if in.Delta == 0 {
		return Transaction{}, ErrInvalidAmount
	}
	wallet, err := s.store.EnsureWallet(ctx, in.UserID)
	if err != nil {
		return Transaction{}, err
	}

	txType := TxManualAdd
	if in.Delta < 0 {
		txType = TxManualRemove
		if wallet.Available < -in.Delta {
			return Transaction{}, ErrInsufficientCoins
		}
	}

	entry := Transaction{
		UserID:        in.UserID,
		Type:          txType,
		Amount:        in.Delta,
		ReferenceType: ReferenceAdjustment,
		Description:   in.Reason,
	}
	applied, err := s.store.ApplyTransaction(ctx, entry)
	if err != nil {
		return Transaction{}, err
	}
	s.push(ctx, in.UserID, "coins_adjusted", "Coin balance adjusted",
		fmt.Sprintf("Your coin balance was adjusted by %d.", in.Delta))
	return applied, nil
}

// Transactions lists the newest entries first. Read failures degrade to
// an empty list so callers stay functional.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) []Transaction {
	if limit <= 0 {
		limit = 50
	}
	entries, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		slog.Warn("coin transaction list unavailable", "userId", userID, "err", err)
		return []Transaction{}
	}
	if entries == nil {
		entries = []Transaction{}
	}
	return entries
}

func (s *Service) ProductSettings(ctx context.Context, productID string) (ProductSettings, error) {
	return s.store.GetOrCreateProductSettings(ctx, productID)
}

func (s *Service) UpdateProductSettings(ctx context.Context, ps ProductSettings) error {
	return s.store.SaveProductSettings(ctx, ps)
}

// ExpireCoins sweeps earned entries past their expiry and writes the
// balancing expired markers. Only coins still available are clawed
// back; spent coins leave a zero-amount marker so the entry is not
// revisited. Per-entry failures are logged and skipped.
func (s *Service) ExpireCoins(ctx context.Context) (int, error) {
	const batchSize = 100
	expired := 0
	for {
		entries, err := s.store.ExpirableEarnings(ctx, s.now(), batchSize)
		if err != nil {
			return expired, err
		}
		if len(entries) == 0 {
			return expired, nil
		}
		progressed := false
		for _, entry := range entries {
			wallet, err := s.store.GetWallet(ctx, entry.UserID)
			if err != nil {
				slog.Warn("coin expiry skipped, wallet unavailable", "userId", entry.UserID, "err", err)
				continue
			}
			claw := entry.Amount
			if claw > wallet.Available {
				claw = wallet.Available
			}
			marker := Transaction{
				UserID:        entry.UserID,
				Type:          TxExpired,
				Amount:        -claw,
				ReferenceType: ReferenceTransaction,
				ReferenceID:   entry.ID,
				Description:   fmt.Sprintf("Expired %d coins", claw),
			}
			if _, err := s.store.ApplyTransaction(ctx, marker); err != nil {
				slog.Warn("coin expiry failed", "transactionId", entry.ID, "err", err)
				continue
			}
			progressed = true
			expired++
			if claw > 0 && s.metrics != nil {
				s.metrics.AddCoinsExpired(claw)
			}
		}
		if !progressed {
			return expired, nil
		}
		if len(entries) < batchSize {
			return expired, nil
		}
	}
}

func (s *Service) push(ctx context.Context, userID, ntype, title, body string) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(ctx, userID, ntype, title, body)
}
