package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/employees"
	"retailops/internal/domain/loyalty"
	"retailops/internal/domain/notifications"
	"retailops/internal/domain/payroll"
	"retailops/internal/platform/config"
	cryptoutil "retailops/internal/platform/crypto"
	"retailops/internal/platform/db"
	"retailops/internal/platform/email"
	"retailops/internal/platform/jobs"
	"retailops/internal/platform/metrics"
	audithandler "retailops/internal/transport/http/handlers/audit"
	authhandler "retailops/internal/transport/http/handlers/auth"
	employeeshandler "retailops/internal/transport/http/handlers/employees"
	loyaltyhandler "retailops/internal/transport/http/handlers/loyalty"
	notificationshandler "retailops/internal/transport/http/handlers/notifications"
	payrollhandler "retailops/internal/transport/http/handlers/payroll"
	reportshandler "retailops/internal/transport/http/handlers/reports"
	"retailops/internal/transport/http/middleware"
)

// App holds the wired application. Tests construct one with New and drive
// the Router directly; main calls Run.
type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Loyalty *loyalty.Service
	Payroll *payroll.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("crypto: %w", err)
	}

	collector := metrics.New()
	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)

	loyaltySvc := loyalty.NewService(loyalty.NewStore(pool), notifySvc, collector)
	payrollSvc := payroll.NewService(payroll.NewStore(pool), notifySvc, collector, cryptoSvc, cfg.PayslipDir)
	employeeStore := employees.NewStore(pool)

	jobsSvc := jobs.New(pool, cfg, loyaltySvc)
	idemStore := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.With(middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)).Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		employeeshandler.NewHandler(employeeStore, auditSvc, authStore).RegisterRoutes(r)
		loyaltyhandler.NewHandler(loyaltySvc, jobsSvc, auditSvc, authStore, idemStore).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc, auditSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		reportshandler.NewHandler(pool, collector, authStore).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobsSvc,
		Loyalty: loyaltySvc,
		Payroll: payrollSvc,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) Serve(ctx context.Context) error {
	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
