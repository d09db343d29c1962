package loyalty

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory StoreAPI that maintains the same wallet
// invariant the real store enforces with CHECK constraints.
type memStore struct {
	settings    Settings
	settingsErr error
	wallets     map[string]Wallet
	ledger      []Transaction
	applyErr    error
	products    map[string]ProductSettings
}

func newMemStore() *memStore {
	return &memStore{
		settings: DefaultSettings(),
		wallets:  map[string]Wallet{},
		products: map[string]ProductSettings{},
	}
}

func (m *memStore) GetSettings(context.Context) (Settings, error) {
	if m.settingsErr != nil {
		return Settings{}, m.settingsErr
	}
	return m.settings, nil
}

func (m *memStore) SaveSettings(_ context.Context, s Settings) error {
	m.settings = s
	return nil
}

func (m *memStore) EnsureWallet(_ context.Context, userID string) (Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		w = Wallet{UserID: userID}
		m.wallets[userID] = w
	}
	return w, nil
}

func (m *memStore) GetWallet(_ context.Context, userID string) (Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (m *memStore) ApplyTransaction(_ context.Context, t Transaction) (Transaction, error) {
	if m.applyErr != nil {
		return Transaction{}, m.applyErr
	}
	w, ok := m.wallets[t.UserID]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	if t.Amount > 0 {
		w.TotalEarned += t.Amount
	} else {
		w.TotalUsed += -t.Amount
	}
	w.Available = w.TotalEarned - w.TotalUsed
	if w.Available < 0 {
		return Transaction{}, ErrInsufficientCoins
	}
	m.wallets[t.UserID] = w

	t.ID = fmt.Sprintf("tx-%d", len(m.ledger)+1)
	t.CreatedAt = time.Now()
	m.ledger = append(m.ledger, t)
	return t, nil
}

func (m *memStore) ListTransactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	var out []Transaction
	for i := len(m.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if m.ledger[i].UserID == userID {
			out = append(out, m.ledger[i])
		}
	}
	return out, nil
}

func (m *memStore) GetOrCreateProductSettings(_ context.Context, productID string) (ProductSettings, error) {
	if ps, ok := m.products[productID]; ok {
		return ps, nil
	}
	return ProductSettings{ProductID: productID, EarningEnabled: true}, nil
}

func (m *memStore) SaveProductSettings(context.Context, ProductSettings) error { return nil }

func (m *memStore) ExpirableEarnings(_ context.Context, asOf time.Time, limit int) ([]Transaction, error) {
	var out []Transaction
	for _, t := range m.ledger {
		if t.Type != TxEarned || t.ExpiresAt == nil || t.ExpiresAt.After(asOf) {
			continue
		}
		marked := false
		for _, mk := range m.ledger {
			if mk.Type == TxExpired && mk.ReferenceID == t.ID {
				marked = true
				break
			}
		}
		if !marked {
			out = append(out, t)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestSettingsFallbackOnReadFailure(t *testing.T) {
	store := newMemStore()
	store.settingsErr = errors.New("connection refused")
	svc := NewService(store, nil, nil)

	got := svc.Settings(context.Background())
	assert.Equal(t, DefaultSettings(), got)
}

func TestEarnCoinsMaintainsWalletInvariant(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, nil, nil)

	txn, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", OrderID: "o1", Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, TxEarned, txn.Type)
	assert.Equal(t, int64(50), txn.Amount)
	assert.Equal(t, ReferenceOrder, txn.ReferenceType)

	_, err = svc.RedeemCoins(ctx, RedeemInput{UserID: "u1", Coins: 20})
	require.NoError(t, err)

	w, err := svc.Wallet(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), w.TotalEarned)
	assert.Equal(t, int64(20), w.TotalUsed)
	assert.Equal(t, w.TotalEarned-w.TotalUsed, w.Available)
}

func TestEarnCoinsZeroGrantWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, nil, nil)

	txn, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, Transaction{}, txn)
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.wallets)
}

func TestEarnCoinsProductEarningDisabled(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.products["p1"] = ProductSettings{ProductID: "p1", EarningEnabled: false}
	svc := NewService(store, nil, nil)

	_, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", ProductID: "p1", Amount: 500})
	assert.ErrorIs(t, err, ErrEarningDisabled)
	assert.Empty(t, store.ledger)

	// A fixed per-purchase grant still applies when earning is enabled.
	store.products["p2"] = ProductSettings{ProductID: "p2", CoinsPerPurchase: 25, EarningEnabled: true}
	txn, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", ProductID: "p2", Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(25), txn.Amount)
}

func TestEarnCoinsDisabledSystem(t *testing.T) {
	store := newMemStore()
	store.settings.SystemEnabled = false
	svc := NewService(store, nil, nil)

	_, err := svc.EarnCoins(context.Background(), EarnInput{UserID: "u1", Amount: 500})
	assert.ErrorIs(t, err, ErrSystemDisabled)
}

func TestEarnCoinsSetsExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	days := 90
	store.settings.CoinExpiryDays = &days

	svc := NewService(store, nil, nil)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	txn, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", Amount: 500})
	require.NoError(t, err)
	require.NotNil(t, txn.ExpiresAt)
	assert.Equal(t, fixed.AddDate(0, 0, 90), *txn.ExpiresAt)
}

func TestRedeemCoinsRejectedBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, nil, nil)

	_, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", Amount: 500})
	require.NoError(t, err)
	before := len(store.ledger)

	_, err = svc.RedeemCoins(ctx, RedeemInput{UserID: "u1", Coins: 51})
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	_, err = svc.RedeemCoins(ctx, RedeemInput{UserID: "u1", Coins: 5})
	assert.ErrorIs(t, err, ErrBelowRedeemMinimum)

	assert.Len(t, store.ledger, before)
	w, _ := store.GetWallet(ctx, "u1")
	assert.Equal(t, int64(50), w.Available)
}

func TestRedeemCoinsMissingWallet(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)
	_, err := svc.RedeemCoins(context.Background(), RedeemInput{UserID: "ghost", Coins: 20})
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestAdjustCoins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store, nil, nil)

	_, err := svc.AdjustCoins(ctx, AdjustInput{UserID: "u1", Delta: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	txn, err := svc.AdjustCoins(ctx, AdjustInput{UserID: "u1", Delta: 100, Reason: "goodwill"})
	require.NoError(t, err)
	assert.Equal(t, TxManualAdd, txn.Type)

	_, err = svc.AdjustCoins(ctx, AdjustInput{UserID: "u1", Delta: -150})
	assert.ErrorIs(t, err, ErrInsufficientCoins)

	txn, err = svc.AdjustCoins(ctx, AdjustInput{UserID: "u1", Delta: -40})
	require.NoError(t, err)
	assert.Equal(t, TxManualRemove, txn.Type)

	w, err := svc.Wallet(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), w.Available)
}

func TestTransactionsDegradesToEmpty(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)

	got := svc.Transactions(context.Background(), "u1", 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExpireCoinsClawsOnlyAvailable(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	days := 30
	store.settings.CoinExpiryDays = &days
	svc := NewService(store, nil, nil)

	earnedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return earnedAt }

	_, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", Amount: 500})
	require.NoError(t, err)
	// Spend most of the grant so only part of it is left to claw back.
	_, err = svc.RedeemCoins(ctx, RedeemInput{UserID: "u1", Coins: 30})
	require.NoError(t, err)

	svc.now = func() time.Time { return earnedAt.AddDate(0, 0, 31) }
	n, err := svc.ExpireCoins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	w, err := svc.Wallet(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Available)
	assert.Equal(t, w.TotalEarned-w.TotalUsed, w.Available)

	marker := store.ledger[len(store.ledger)-1]
	assert.Equal(t, TxExpired, marker.Type)
	assert.Equal(t, int64(-20), marker.Amount)
	assert.Equal(t, ReferenceTransaction, marker.ReferenceType)

	// Second sweep finds nothing: the marker makes the earn entry final.
	n, err = svc.ExpireCoins(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpireCoinsFullySpentLeavesZeroMarker(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	days := 30
	store.settings.CoinExpiryDays = &days
	svc := NewService(store, nil, nil)

	earnedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return earnedAt }

	_, err := svc.EarnCoins(ctx, EarnInput{UserID: "u1", Amount: 500})
	require.NoError(t, err)
	_, err = svc.RedeemCoins(ctx, RedeemInput{UserID: "u1", Coins: 50})
	require.NoError(t, err)

	svc.now = func() time.Time { return earnedAt.AddDate(0, 0, 31) }
	n, err := svc.ExpireCoins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	marker := store.ledger[len(store.ledger)-1]
	assert.Equal(t, TxExpired, marker.Type)
	assert.Zero(t, marker.Amount)
}
