package loyaltyhandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/loyalty"
	"retailops/internal/platform/jobs"
	"retailops/internal/transport/http/api"
	"retailops/internal/transport/http/middleware"
	"retailops/internal/transport/http/shared"
)

type Handler struct {
	Service     *loyalty.Service
	Jobs        *jobs.Service
	Audit       *audit.Service
	Perms       middleware.PermissionStore
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(service *loyalty.Service, jobsSvc *jobs.Service, auditSvc *audit.Service, perms middleware.PermissionStore, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Audit: auditSvc, Perms: perms, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/loyalty", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLoyaltyRead, h.Perms)).Get("/settings", h.handleGetSettings)
		r.With(middleware.RequirePermission(auth.PermLoyaltySettings, h.Perms)).Put("/settings", h.handleUpdateSettings)

		r.With(middleware.RequirePermission(auth.PermLoyaltyRead, h.Perms)).Get("/wallet", h.handleOwnWallet)
		r.With(middleware.RequirePermission(auth.PermLoyaltyRead, h.Perms)).Post("/wallet/initialize", h.handleInitializeWallet)
		r.With(middleware.RequirePermission(auth.PermLoyaltyAdjust, h.Perms)).Get("/wallets/{userID}", h.handleWalletByUser)

		r.With(middleware.RequirePermission(auth.PermLoyaltyRead, h.Perms)).Get("/transactions", h.handleOwnTransactions)
		r.With(middleware.RequirePermission(auth.PermLoyaltyAdjust, h.Perms)).Get("/transactions/{userID}", h.handleTransactionsByUser)

		r.With(middleware.RequirePermission(auth.PermLoyaltyEarn, h.Perms)).Post("/earn", h.handleEarn)
		r.With(middleware.RequirePermission(auth.PermLoyaltyRedeem, h.Perms)).Post("/redeem", h.handleRedeem)
		r.With(middleware.RequirePermission(auth.PermLoyaltyAdjust, h.Perms)).Post("/adjust", h.handleAdjust)

		r.With(middleware.RequirePermission(auth.PermLoyaltyRead, h.Perms)).Get("/products/{productID}/settings", h.handleProductSettings)
		r.With(middleware.RequirePermission(auth.PermLoyaltySettings, h.Perms)).Put("/products/{productID}/settings", h.handleUpdateProductSettings)

		r.With(middleware.RequirePermission(auth.PermLoyaltySettings, h.Perms)).Post("/expiry/run", h.handleRunExpiry)
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Service.Settings(r.Context()), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload loyalty.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	if payload.CoinsPerRupee < 0 {
		v.Add("coinsPerRupee", "must not be negative")
	}
	if payload.GlobalMultiplier < 0 {
		v.Add("globalMultiplier", "must not be negative")
	}
	if payload.FestiveMultiplier < 0 {
		v.Add("festiveMultiplier", "must not be negative")
	}
	if payload.MinCoinsToRedeem < 0 {
		v.Add("minCoinsToRedeem", "must not be negative")
	}
	if payload.CoinExpiryDays != nil && *payload.CoinExpiryDays <= 0 {
		v.Add("coinExpiryDays", "must be positive when set")
	}
	if payload.MaxCoinsPerOrder != nil && *payload.MaxCoinsPerOrder <= 0 {
		v.Add("maxCoinsPerOrder", "must be positive when set")
	}
	if payload.FestiveStart != nil && payload.FestiveEnd != nil && payload.FestiveEnd.Before(*payload.FestiveStart) {
		v.Add("festiveEnd", "must be on or after festiveStart")
	}
	if v.Reject(w, reqID) {
		return
	}

	before := h.Service.Settings(r.Context())
	if err := h.Service.UpdateSettings(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "settings_update_failed", "failed to update loyalty settings", reqID)
		return
	}
	h.recordAudit(r, user.UserID, "loyalty.settings.update", "loyalty_settings", "1", before, payload)

	api.Success(w, h.Service.Settings(r.Context()), reqID)
}

func (h *Handler) handleOwnWallet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.writeWallet(w, r, user.UserID)
}

func (h *Handler) handleWalletByUser(w http.ResponseWriter, r *http.Request) {
	h.writeWallet(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) writeWallet(w http.ResponseWriter, r *http.Request, userID string) {
	reqID := middleware.GetRequestID(r.Context())
	wallet, err := h.Service.Wallet(r.Context(), userID)
	if errors.Is(err, loyalty.ErrWalletNotFound) {
		api.Fail(w, http.StatusNotFound, "wallet_not_found", "no wallet exists for this user", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "wallet_lookup_failed", "failed to load wallet", reqID)
		return
	}
	api.Success(w, wallet, reqID)
}

func (h *Handler) handleInitializeWallet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	wallet, err := h.Service.EnsureWallet(r.Context(), user.UserID)
	if err != nil {
		writeLoyaltyError(w, err, reqID)
		return
	}
	api.Created(w, wallet, reqID)
}

func (h *Handler) handleOwnTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.writeTransactions(w, r, user.UserID)
}

func (h *Handler) handleTransactionsByUser(w http.ResponseWriter, r *http.Request) {
	h.writeTransactions(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) writeTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	page := shared.ParsePagination(r, 50, 200)
	txns := h.Service.Transactions(r.Context(), userID, page.Limit)
	api.Success(w, map[string]any{"transactions": txns}, middleware.GetRequestID(r.Context()))
}

type earnRequest struct {
	UserID      string  `json:"userId"`
	OrderID     string  `json:"orderId"`
	ProductID   string  `json:"productId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (h *Handler) handleEarn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload earnRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "is required")
	v.NonNegative("amount", payload.Amount, "must not be negative")
	if v.Reject(w, reqID) {
		return
	}

	txn, err := h.Service.EarnCoins(r.Context(), loyalty.EarnInput{
		UserID:      payload.UserID,
		OrderID:     payload.OrderID,
		ProductID:   payload.ProductID,
		Amount:      payload.Amount,
		Description: payload.Description,
	})
	if err != nil {
		writeLoyaltyError(w, err, reqID)
		return
	}
	api.Created(w, txn, reqID)
}

type redeemRequest struct {
	UserID      string `json:"userId"`
	Coins       int64  `json:"coins"`
	OrderID     string `json:"orderId"`
	Description string `json:"description"`
}

// handleRedeem deducts coins from a wallet. Retried submissions carrying
// the same Idempotency-Key replay the first response instead of deducting
// twice.
func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", reqID)
		return
	}

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, replayed, err := h.Idempotency.Check(r.Context(), user.UserID, "loyalty.redeem", idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", reqID)
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "idempotency check failed", reqID)
			return
		}
		if replayed {
			var data any
			_ = json.Unmarshal(stored, &data)
			api.Success(w, data, reqID)
			return
		}
	}

	var payload redeemRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	targetUser := payload.UserID
	if targetUser == "" {
		targetUser = user.UserID
	}
	// Redeeming another user's wallet is an on-behalf operation and needs
	// the adjust permission; loyalty.redeem alone only covers your own.
	if targetUser != user.UserID {
		allowed, err := h.Perms.HasPermission(r.Context(), user.RoleID, auth.PermLoyaltyAdjust)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
			return
		}
		if !allowed {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot redeem coins for another user", reqID)
			return
		}
	}

	txn, err := h.Service.RedeemCoins(r.Context(), loyalty.RedeemInput{
		UserID:      targetUser,
		Coins:       payload.Coins,
		OrderID:     payload.OrderID,
		Description: payload.Description,
	})
	if err != nil {
		writeLoyaltyError(w, err, reqID)
		return
	}

	if idemKey != "" {
		if response, err := json.Marshal(txn); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, "loyalty.redeem", idemKey, requestHash, response); err != nil {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", reqID)
				return
			}
		}
	}
	api.Created(w, txn, reqID)
}

type adjustRequest struct {
	UserID string `json:"userId"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "is required")
	v.Required("reason", payload.Reason, "is required")
	if payload.Delta == 0 {
		v.Add("delta", "must not be zero")
	}
	if v.Reject(w, reqID) {
		return
	}

	txn, err := h.Service.AdjustCoins(r.Context(), loyalty.AdjustInput{
		UserID: payload.UserID,
		Delta:  payload.Delta,
		Reason: payload.Reason,
	})
	if err != nil {
		writeLoyaltyError(w, err, reqID)
		return
	}
	h.recordAudit(r, user.UserID, "loyalty.adjust", "coin_wallet", payload.UserID, nil, payload)

	api.Created(w, txn, reqID)
}

func (h *Handler) handleProductSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	productID := chi.URLParam(r, "productID")

	settings, err := h.Service.ProductSettings(r.Context(), productID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_settings_failed", "failed to load product settings", reqID)
		return
	}
	api.Success(w, settings, reqID)
}

func (h *Handler) handleUpdateProductSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	productID := chi.URLParam(r, "productID")

	var payload loyalty.ProductSettings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.ProductID = productID

	v := shared.NewValidator()
	if payload.CoinsPerPurchase < 0 {
		v.Add("coinsEarnedPerPurchase", "must not be negative")
	}
	if payload.CoinsToBuy < 0 {
		v.Add("coinsRequiredToBuy", "must not be negative")
	}
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Service.UpdateProductSettings(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_settings_failed", "failed to update product settings", reqID)
		return
	}
	h.recordAudit(r, user.UserID, "loyalty.product_settings.update", "product_loyalty_settings", productID, nil, payload)

	settings, err := h.Service.ProductSettings(r.Context(), productID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "product_settings_failed", "failed to load product settings", reqID)
		return
	}
	api.Success(w, settings, reqID)
}

func (h *Handler) handleRunExpiry(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	details, err := h.Jobs.ExpireCoins(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "expiry_failed", "coin expiry run failed", reqID)
		return
	}
	api.Success(w, details, reqID)
}

func (h *Handler) recordAudit(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	_ = h.Audit.Record(r.Context(), actorID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
}

func writeLoyaltyError(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, loyalty.ErrSystemDisabled):
		api.Fail(w, http.StatusForbidden, "loyalty_disabled", "the loyalty system is disabled", reqID)
	case errors.Is(err, loyalty.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", "amount must be positive", reqID)
	case errors.Is(err, loyalty.ErrBelowRedeemMinimum):
		api.Fail(w, http.StatusUnprocessableEntity, "below_redeem_minimum", "coin amount is below the redemption minimum", reqID)
	case errors.Is(err, loyalty.ErrInsufficientCoins):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_coins", "wallet does not hold enough coins", reqID)
	case errors.Is(err, loyalty.ErrWalletNotFound):
		api.Fail(w, http.StatusNotFound, "wallet_not_found", "no wallet exists for this user", reqID)
	case errors.Is(err, loyalty.ErrEarningDisabled):
		api.Fail(w, http.StatusForbidden, "earning_disabled", "coin earning is disabled for this product", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "loyalty_error", "loyalty operation failed", reqID)
	}
}
