package ingestionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueService defines the contract for ledger job scheduling.
type QueueService interface {
	// EnqueueFeed schedules ingestion of the feed file at path.
	EnqueueFeed(ctx context.Context, path string) (int64, error)
	// EnqueueRecompute schedules a full debt recompute.
	EnqueueRecompute(ctx context.Context) (int64, error)
	// Start starts working jobs.
	Start(ctx context.Context) error
	// Stop waits for running jobs and releases the pool.
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config configures the River client.
type Config struct {
	DSN          string
	Queue        string
	PollInterval time.Duration
}

// Service runs ledger jobs on River. Its queue has a single worker, so
// ledger writers never run concurrently.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	queue   string
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewService creates a new River-based queue service.
func NewService(
	ctx context.Context,
	cfg Config,
	logger *slog.Logger,
	metrics observability.Metrics,
	feedWorker *IngestFeedWorker,
	recomputeWorker *RecomputeDebtsWorker,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", cfg.Queue),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_queue")
	ctxLogger.Info("Initializing ledger queue service")

	// River requires pgx, not database/sql.
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, feedWorker)
	river.AddWorker(workers, recomputeWorker)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			cfg.Queue: {MaxWorkers: 1},
		},
		FetchPollInterval: cfg.PollInterval,
		Logger:            ctxLogger,
		Workers:           workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_queue")
	metrics.RecordOperationDuration(ctx, "initialize_queue", time.Since(start))
	ctxLogger.Info("Ledger queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		queue:   cfg.Queue,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting ledger queue service")
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping ledger queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

func (s *Service) EnqueueFeed(ctx context.Context, path string) (int64, error) {
	return s.insert(ctx, "enqueue_feed", IngestFeedJob{Path: path})
}

func (s *Service) EnqueueRecompute(ctx context.Context) (int64, error) {
	return s.insert(ctx, "enqueue_recompute", RecomputeDebtsJob{})
}

func (s *Service) insert(ctx context.Context, operation string, args river.JobArgs) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation)

	res, err := s.client.Insert(ctx, args, &river.InsertOpts{Queue: s.queue})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue job",
			attr.String("kind", args.Kind()),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation)
		return 0, fmt.Errorf("failed to enqueue %s job: %w", args.Kind(), err)
	}

	s.metrics.RecordOperationSuccess(ctx, operation)
	s.metrics.RecordOperationDuration(ctx, operation, time.Since(start))
	s.logger.InfoContext(ctx, "Job enqueued",
		attr.String("kind", args.Kind()),
		attr.Int64("job_id", res.Job.ID),
	)
	return res.Job.ID, nil
}
