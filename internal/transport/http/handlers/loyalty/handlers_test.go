package loyaltyhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"retailops/internal/domain/auth"
	"retailops/internal/domain/loyalty"
	"retailops/internal/transport/http/middleware"
)

type rolePerms map[string][]string

func (p rolePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, perm := range p[roleID] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}

type walletStore struct {
	wallets map[string]loyalty.Wallet
	ledger  []loyalty.Transaction
}

func (s *walletStore) GetSettings(context.Context) (loyalty.Settings, error) {
	return loyalty.DefaultSettings(), nil
}

func (s *walletStore) SaveSettings(context.Context, loyalty.Settings) error { return nil }

func (s *walletStore) EnsureWallet(_ context.Context, userID string) (loyalty.Wallet, error) {
	w, ok := s.wallets[userID]
	if !ok {
		w = loyalty.Wallet{UserID: userID}
		s.wallets[userID] = w
	}
	return w, nil
}

func (s *walletStore) GetWallet(_ context.Context, userID string) (loyalty.Wallet, error) {
	w, ok := s.wallets[userID]
	if !ok {
		return loyalty.Wallet{}, loyalty.ErrWalletNotFound
	}
	return w, nil
}

func (s *walletStore) ApplyTransaction(_ context.Context, t loyalty.Transaction) (loyalty.Transaction, error) {
	w := s.wallets[t.UserID]
	if t.Amount > 0 {
		w.TotalEarned += t.Amount
	} else {
		w.TotalUsed += -t.Amount
	}
	w.Available = w.TotalEarned - w.TotalUsed
	if w.Available < 0 {
		return loyalty.Transaction{}, loyalty.ErrInsufficientCoins
	}
	s.wallets[t.UserID] = w
	s.ledger = append(s.ledger, t)
	return t, nil
}

func (s *walletStore) ListTransactions(context.Context, string, int) ([]loyalty.Transaction, error) {
	return nil, nil
}

func (s *walletStore) GetOrCreateProductSettings(_ context.Context, productID string) (loyalty.ProductSettings, error) {
	return loyalty.ProductSettings{ProductID: productID, EarningEnabled: true}, nil
}

func (s *walletStore) SaveProductSettings(context.Context, loyalty.ProductSettings) error { return nil }

func (s *walletStore) ExpirableEarnings(context.Context, time.Time, int) ([]loyalty.Transaction, error) {
	return nil, nil
}

const testSecret = "test-secret"

func newRedeemRouter(t *testing.T, store *walletStore, perms rolePerms) http.Handler {
	t.Helper()
	h := NewHandler(loyalty.NewService(store, nil, nil), nil, nil, perms, nil)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	h.RegisterRoutes(r)
	return r
}

func redeemAs(t *testing.T, router http.Handler, userID, roleID, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: userID, RoleID: roleID}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/loyalty/redeem", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seededWalletStore() *walletStore {
	return &walletStore{wallets: map[string]loyalty.Wallet{
		"u-customer": {UserID: "u-customer", TotalEarned: 100, Available: 100},
		"u-victim":   {UserID: "u-victim", TotalEarned: 100, Available: 100},
	}}
}

func TestRedeemOwnWallet(t *testing.T) {
	store := seededWalletStore()
	perms := rolePerms{"r-customer": {auth.PermLoyaltyRead, auth.PermLoyaltyRedeem}}
	router := newRedeemRouter(t, store, perms)

	rec := redeemAs(t, router, "u-customer", "r-customer", `{"coins":20}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if store.wallets["u-customer"].Available != 80 {
		t.Fatalf("available = %d, want 80", store.wallets["u-customer"].Available)
	}
}

func TestRedeemCannotTargetAnotherUsersWallet(t *testing.T) {
	store := seededWalletStore()
	perms := rolePerms{"r-customer": {auth.PermLoyaltyRead, auth.PermLoyaltyRedeem}}
	router := newRedeemRouter(t, store, perms)

	rec := redeemAs(t, router, "u-customer", "r-customer", `{"userId":"u-victim","coins":20}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	if store.wallets["u-victim"].Available != 100 {
		t.Fatalf("victim wallet available = %d, want untouched 100", store.wallets["u-victim"].Available)
	}
	if len(store.ledger) != 0 {
		t.Fatalf("ledger entries = %d, want 0", len(store.ledger))
	}
}

func TestRedeemOnBehalfRequiresAdjustPermission(t *testing.T) {
	store := seededWalletStore()
	perms := rolePerms{"r-admin": {auth.PermLoyaltyRead, auth.PermLoyaltyRedeem, auth.PermLoyaltyAdjust}}
	router := newRedeemRouter(t, store, perms)

	rec := redeemAs(t, router, "u-admin", "r-admin", `{"userId":"u-victim","coins":20}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if store.wallets["u-victim"].Available != 80 {
		t.Fatalf("victim wallet available = %d, want 80", store.wallets["u-victim"].Available)
	}
}
