package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"retailops/internal/domain/loyalty"
	"retailops/internal/platform/config"
)

const JobCoinExpiry = "coin_expiry"

// Service is a small in-process job runner: a buffered queue drained by a
// single worker, with every run bookkept in job_runs.
type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Loyalty *loyalty.Service
	queue   chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, loyaltySvc *loyalty.Service) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Loyalty: loyaltySvc,
		queue:   make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.CoinExpiryInterval > 0 {
		go s.scheduleCoinExpiry(ctx, s.Cfg.CoinExpiryInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job synchronously, bypassing the queue. Used by the
// admin endpoint that triggers an expiry sweep on demand.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) ExpireCoins(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobCoinExpiry, s.coinExpiryRun)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "error", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
		INSERT INTO job_runs (job_type, status)
		VALUES ($1, $2)
		RETURNING id`,
		j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "error", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "error", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
			UPDATE job_runs
			SET status = $1, details_json = $2, completed_at = now()
			WHERE id = $3`,
			status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "error", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleCoinExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobCoinExpiry, s.coinExpiryRun)
		}
	}
}

func (s *Service) coinExpiryRun(ctx context.Context) (any, error) {
	expired, err := s.Loyalty.ExpireCoins(ctx)
	return map[string]any{"expiredEntries": expired}, err
}
