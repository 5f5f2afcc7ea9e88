package ingestionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	standingsservice "github.com/Black-And-White-Club/league-ledger/app/modules/standings/application"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// IngestionService implements the Service interface.
type IngestionService struct {
	roster    rosterservice.Service
	standings standingsservice.Service
	ledger    Recomputer
	locker    LedgerLocker
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
}

var _ Service = (*IngestionService)(nil)

// NewIngestionService creates a new IngestionService.
func NewIngestionService(
	roster rosterservice.Service,
	standings standingsservice.Service,
	ledger Recomputer,
	locker LedgerLocker,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *IngestionService {
	return &IngestionService{
		roster:    roster,
		standings: standings,
		ledger:    ledger,
		locker:    locker,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *IngestionService,
	ctx context.Context,
	operationName string,
	ordinal int,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.Int("round_ordinal", ordinal),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.Ordinal(ordinal),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.Ordinal(ordinal),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Ordinal(ordinal),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("%s: %w", operationName, err)
	}

	s.logger.InfoContext(ctx, operationName+" completed successfully",
		attr.String("operation", operationName),
		attr.Ordinal(ordinal),
		attr.ExtractCorrelationID(ctx),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *IngestionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

func (s *IngestionService) IngestRound(ctx context.Context, ordinal int, label string, entries []sharedtypes.RawPoints) (RoundResult, error) {
	ctx = attr.WithCorrelationID(ctx)
	if ordinal < 1 {
		return RoundResult{}, fmt.Errorf("%w: %w", ErrIngestionFailed, rosterservice.ErrInvalidOrdinal)
	}

	result, err := withTelemetry(s, ctx, "IngestRound", ordinal, func(ctx context.Context) (RoundResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RoundResult, error) {
			if err := s.locker.AcquireLedgerLock(ctx, db); err != nil {
				return RoundResult{}, err
			}
			return s.ingestRoundInTx(ctx, db, ordinal, label, entries)
		})
	})
	if err != nil {
		return RoundResult{}, ErrIngestionFailed
	}
	s.committed(ctx, result)
	return result, nil
}

func (s *IngestionService) AppendRound(ctx context.Context, label string, entries []sharedtypes.RawPoints) (RoundResult, error) {
	ctx = attr.WithCorrelationID(ctx)

	result, err := withTelemetry(s, ctx, "AppendRound", 0, func(ctx context.Context) (RoundResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RoundResult, error) {
			if err := s.locker.AcquireLedgerLock(ctx, db); err != nil {
				return RoundResult{}, err
			}
			ordinal, err := s.roster.NextOrdinal(ctx, db)
			if err != nil {
				return RoundResult{}, err
			}
			return s.ingestRoundInTx(ctx, db, ordinal, label, entries)
		})
	})
	if err != nil {
		return RoundResult{}, ErrIngestionFailed
	}
	s.committed(ctx, result)
	return result, nil
}

// committed reports a round whose transaction has committed.
func (s *IngestionService) committed(ctx context.Context, result RoundResult) {
	s.metrics.RecordLedgerSize(ctx, result.HistoryRows, result.Players)
	s.logger.InfoContext(ctx, "Debt ledger recomputed",
		attr.ExtractCorrelationID(ctx),
		attr.Ordinal(result.Ordinal),
		attr.Int("history_rows", result.HistoryRows),
		attr.Int("players", result.Players),
	)
}

// ingestRoundInTx runs on a transaction that already holds the ledger lock.
func (s *IngestionService) ingestRoundInTx(ctx context.Context, db bun.IDB, ordinal int, label string, entries []sharedtypes.RawPoints) (RoundResult, error) {
	roundID, err := s.roster.UpsertRound(ctx, db, ordinal, label)
	if err != nil {
		return RoundResult{}, fmt.Errorf("upsert round: %w", err)
	}

	recorded, err := s.standings.RecordRoundPoints(ctx, db, roundID, entries)
	if err != nil {
		return RoundResult{}, fmt.Errorf("record points: %w", err)
	}

	ledger, err := s.ledger.RecomputeInTx(ctx, db)
	if err != nil {
		return RoundResult{}, fmt.Errorf("recompute debts: %w", err)
	}

	return RoundResult{
		Ordinal:     ordinal,
		RoundID:     roundID,
		Recorded:    recorded.Recorded,
		Skipped:     recorded.Skipped,
		HistoryRows: len(ledger.History),
		Players:     len(ledger.Totals),
	}, nil
}

func (s *IngestionService) IngestRoster(ctx context.Context, entries []sharedtypes.RosterEntry) (RosterResult, error) {
	return s.roster.IngestRoster(attr.WithCorrelationID(ctx), entries)
}

func (s *IngestionService) IngestFeed(ctx context.Context, feed sharedtypes.Feed) (FeedResult, error) {
	ctx = attr.WithCorrelationID(ctx)

	var result FeedResult
	roster, rosterErr := s.IngestRoster(ctx, feed.Roster)
	result.Roster = roster
	if rosterErr != nil && !errors.Is(rosterErr, rosterservice.ErrRosterIncomplete) {
		return result, rosterErr
	}

	for i, round := range feed.Rounds {
		ordinal := i + 1
		rr, err := s.IngestRound(ctx, ordinal, round.Label, round.Entries)
		if err != nil {
			s.logger.ErrorContext(ctx, "Feed ingestion stopped",
				attr.ExtractCorrelationID(ctx),
				attr.Ordinal(ordinal),
				attr.Int("committed_rounds", len(result.Rounds)),
			)
			return result, err
		}
		result.Rounds = append(result.Rounds, rr)
	}

	s.logger.InfoContext(ctx, "Feed ingested",
		attr.ExtractCorrelationID(ctx),
		attr.Int("players", roster.Upserted),
		attr.Int("rounds", len(result.Rounds)),
	)
	return result, rosterErr
}
