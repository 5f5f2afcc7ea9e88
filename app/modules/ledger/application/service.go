package ledgerservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LedgerService implements the Service interface.
type LedgerService struct {
	repo      ledgerdb.Repository
	roster    RosterReader
	standings PointsReader
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
}

var _ Service = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	repo ledgerdb.Repository,
	roster RosterReader,
	standings PointsReader,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LedgerService {
	return &LedgerService{
		repo:      repo,
		roster:    roster,
		standings: standings,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *LedgerService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("operation", operationName),
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
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("%s: %w", operationName, err)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// runInTx runs fn in a transaction, or directly on the repositories' own
// connection when the service has no database.
func runInTx[T any](
	s *LedgerService,
	ctx context.Context,
	opts *sql.TxOptions,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// readOnly gives the query operations one consistent snapshot.
var readOnly = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (s *LedgerService) RecomputeDebts(ctx context.Context) (ledgerdomain.Ledger, error) {
	ledger, err := withTelemetry(s, ctx, "RecomputeDebts", func(ctx context.Context) (ledgerdomain.Ledger, error) {
		return runInTx(s, ctx, &sql.TxOptions{}, s.RecomputeInTx)
	})
	if err != nil {
		return ledgerdomain.Ledger{}, ErrRecomputeFailed
	}
	s.metrics.RecordLedgerSize(ctx, len(ledger.History), len(ledger.Totals))
	s.logger.InfoContext(ctx, "Debt ledger recomputed",
		attr.ExtractCorrelationID(ctx),
		attr.Int("history_rows", len(ledger.History)),
		attr.Int("players", len(ledger.Totals)),
	)
	return ledger, nil
}

// RecomputeInTx rebuilds the ledger on the caller's transaction. It records no
// metrics: the caller reports the ledger size once its transaction commits.
func (s *LedgerService) RecomputeInTx(ctx context.Context, db bun.IDB) (ledgerdomain.Ledger, error) {
	ctx, span := s.tracer.Start(ctx, "RecomputeInTx")
	defer span.End()

	if err := s.repo.AcquireLedgerLock(ctx, db); err != nil {
		return ledgerdomain.Ledger{}, err
	}

	players, err := s.roster.ListPlayers(ctx, db)
	if err != nil {
		return ledgerdomain.Ledger{}, fmt.Errorf("list players: %w", err)
	}
	points, err := s.standings.AllPoints(ctx, db)
	if err != nil {
		return ledgerdomain.Ledger{}, fmt.Errorf("load points: %w", err)
	}

	playerIDs := make([]int64, len(players))
	for i, p := range players {
		playerIDs[i] = p.ID
	}
	scores := make([]ledgerdomain.RoundScore, len(points))
	for i, p := range points {
		scores[i] = ledgerdomain.RoundScore{
			RoundID:      p.RoundID,
			RoundOrdinal: p.RoundOrdinal,
			Score: ledgerdomain.Score{
				PlayerID: p.PlayerID,
				Username: p.Username,
				Points:   p.Points,
			},
		}
	}

	ledger := ledgerdomain.BuildLedger(playerIDs, scores)
	if err := ledger.Validate(); err != nil {
		return ledgerdomain.Ledger{}, err
	}

	if err := s.repo.DeleteAllHistory(ctx, db); err != nil {
		return ledgerdomain.Ledger{}, err
	}
	if err := s.repo.DeleteAllTotals(ctx, db); err != nil {
		return ledgerdomain.Ledger{}, err
	}

	history := make([]ledgerdb.DebtHistoryEntry, len(ledger.History))
	for i, h := range ledger.History {
		history[i] = ledgerdb.DebtHistoryEntry{PlayerID: h.PlayerID, RoundID: h.RoundID, Amount: h.Amount}
	}
	if err := s.repo.InsertHistory(ctx, db, history); err != nil {
		return ledgerdomain.Ledger{}, err
	}

	totals := make([]ledgerdb.DebtTotal, len(ledger.Totals))
	for i, t := range ledger.Totals {
		totals[i] = ledgerdb.DebtTotal{PlayerID: t.PlayerID, Amount: t.Amount}
	}
	if err := s.repo.InsertTotals(ctx, db, totals); err != nil {
		return ledgerdomain.Ledger{}, err
	}

	return ledger, nil
}
