package reportshandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/domain/auth"
	"retailops/internal/platform/metrics"
	"retailops/internal/transport/http/api"
	"retailops/internal/transport/http/middleware"
)

type Handler struct {
	DB      *pgxpool.Pool
	Metrics *metrics.Collector
	Perms   middleware.PermissionStore
}

func NewHandler(db *pgxpool.Pool, collector *metrics.Collector, perms middleware.PermissionStore) *Handler {
	return &Handler{DB: db, Metrics: collector, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/metrics", h.handleMetrics)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/loyalty/overview", h.handleLoyaltyOverview)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/payroll/overview", h.handlePayrollOverview)
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLoyaltyOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var wallets int
	var earned, used, available int64
	err := h.DB.QueryRow(r.Context(), `
		SELECT COUNT(*),
		       COALESCE(SUM(total_coins_earned), 0),
		       COALESCE(SUM(total_coins_used), 0),
		       COALESCE(SUM(available_coins), 0)
		FROM coin_wallets`).Scan(&wallets, &earned, &used, &available)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build loyalty overview", reqID)
		return
	}

	byType := map[string]int64{}
	rows, err := h.DB.Query(r.Context(), `
		SELECT transaction_type, COUNT(*)
		FROM coin_transactions
		GROUP BY transaction_type`)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build loyalty overview", reqID)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var txType string
		var count int64
		if err := rows.Scan(&txType, &count); err != nil {
			api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build loyalty overview", reqID)
			return
		}
		byType[txType] = count
	}

	api.Success(w, map[string]any{
		"wallets":            wallets,
		"totalCoinsEarned":   earned,
		"totalCoinsUsed":     used,
		"availableCoins":     available,
		"transactionsByType": byType,
	}, reqID)
}

func (h *Handler) handlePayrollOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "month and year query params are required", reqID)
		return
	}

	var generated, paid, pending, onHold int
	var grossTotal, netTotal float64
	err := h.DB.QueryRow(r.Context(), `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE payment_status = 'Paid'),
		       COUNT(*) FILTER (WHERE payment_status = 'Pending'),
		       COUNT(*) FILTER (WHERE payment_status = 'On Hold'),
		       COALESCE(SUM(gross_salary), 0),
		       COALESCE(SUM(net_salary), 0)
		FROM salary_records
		WHERE month = $1 AND year = $2`,
		month, year).Scan(&generated, &paid, &pending, &onHold, &grossTotal, &netTotal)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build payroll overview", reqID)
		return
	}

	api.Success(w, map[string]any{
		"month":      month,
		"year":       year,
		"generated":  generated,
		"paid":       paid,
		"pending":    pending,
		"onHold":     onHold,
		"grossTotal": grossTotal,
		"netTotal":   netTotal,
	}, reqID)
}
