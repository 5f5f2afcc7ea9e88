package ingestionqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/riverqueue/river"
)

// FeedLoader reads a feed file. The feed parser factory satisfies it.
type FeedLoader interface {
	Load(path string) (*sharedtypes.Feed, error)
}

// FeedIngester is the part of the ingestion service the feed worker drives.
type FeedIngester interface {
	IngestFeed(ctx context.Context, feed sharedtypes.Feed) (ingestionservice.FeedResult, error)
}

// DebtRecomputer is the part of the ledger service the recompute worker drives.
type DebtRecomputer interface {
	RecomputeDebts(ctx context.Context) (ledgerdomain.Ledger, error)
}

// IngestFeedWorker runs IngestFeedJob.
type IngestFeedWorker struct {
	river.WorkerDefaults[IngestFeedJob]

	logger    *slog.Logger
	loader    FeedLoader
	ingestion FeedIngester
}

// NewIngestFeedWorker creates a new IngestFeedWorker.
func NewIngestFeedWorker(logger *slog.Logger, loader FeedLoader, ingestion FeedIngester) *IngestFeedWorker {
	return &IngestFeedWorker{logger: logger, loader: loader, ingestion: ingestion}
}

// Work loads the feed and ingests it. A feed that cannot be parsed will not
// parse on retry either, so the job is cancelled.
func (w *IngestFeedWorker) Work(ctx context.Context, job *river.Job[IngestFeedJob]) error {
	ctx = attr.WithCorrelationID(ctx)
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.String("path", job.Args.Path),
		attr.ExtractCorrelationID(ctx),
	)

	feed, err := w.loader.Load(job.Args.Path)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load feed", attr.Error(err))
		return river.JobCancel(fmt.Errorf("load feed: %w", err))
	}

	result, err := w.ingestion.IngestFeed(ctx, *feed)
	if errors.Is(err, rosterservice.ErrRosterIncomplete) {
		logger.WarnContext(ctx, "Feed ingested with roster failures",
			attr.Int("roster_failures", len(result.Roster.Failures)),
			attr.Int("rounds", len(result.Rounds)),
		)
		return nil
	}
	if err != nil {
		logger.ErrorContext(ctx, "Feed ingestion failed",
			attr.Int("committed_rounds", len(result.Rounds)),
			attr.Error(err),
		)
		return err
	}

	logger.InfoContext(ctx, "Feed job completed",
		attr.Int("players", result.Roster.Upserted),
		attr.Int("rounds", len(result.Rounds)),
	)
	return nil
}

// RecomputeDebtsWorker runs RecomputeDebtsJob.
type RecomputeDebtsWorker struct {
	river.WorkerDefaults[RecomputeDebtsJob]

	logger *slog.Logger
	ledger DebtRecomputer
}

// NewRecomputeDebtsWorker creates a new RecomputeDebtsWorker.
func NewRecomputeDebtsWorker(logger *slog.Logger, ledger DebtRecomputer) *RecomputeDebtsWorker {
	return &RecomputeDebtsWorker{logger: logger, ledger: ledger}
}

func (w *RecomputeDebtsWorker) Work(ctx context.Context, job *river.Job[RecomputeDebtsJob]) error {
	ctx = attr.WithCorrelationID(ctx)
	ledger, err := w.ledger.RecomputeDebts(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Recompute job failed",
			attr.Int64("job_id", job.ID),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return err
	}
	w.logger.InfoContext(ctx, "Recompute job completed",
		attr.Int64("job_id", job.ID),
		attr.ExtractCorrelationID(ctx),
		attr.Int("history_rows", len(ledger.History)),
	)
	return nil
}
