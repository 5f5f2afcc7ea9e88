package standingsservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	standingsdomain "github.com/Black-And-White-Club/league-ledger/app/modules/standings/domain"
	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StandingsService implements the Service interface.
type StandingsService struct {
	repo     standingsdb.Repository
	resolver PlayerResolver
	logger   *slog.Logger
	metrics  observability.Metrics
	tracer   trace.Tracer
}

var _ Service = (*StandingsService)(nil)

// NewStandingsService creates a new StandingsService.
func NewStandingsService(
	repo standingsdb.Repository,
	resolver PlayerResolver,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
) *StandingsService {
	return &StandingsService{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
}

func (s *StandingsService) RecordPoints(ctx context.Context, db bun.IDB, playerID, roundID int64, points int) error {
	if roundID == 0 {
		return ErrInvalidRound
	}
	if points < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativePoints, points)
	}
	return s.repo.UpsertPoints(ctx, db, []standingsdb.PointsEntry{
		{PlayerID: playerID, RoundID: roundID, Points: points},
	})
}

// RecordRoundPoints parses and stores a scraped round. Usernames missing from
// the roster are skipped and logged. When a username repeats, its last
// occurrence wins.
func (s *StandingsService) RecordRoundPoints(ctx context.Context, db bun.IDB, roundID int64, entries []sharedtypes.RawPoints) (RecordResult, error) {
	if roundID == 0 {
		return RecordResult{}, ErrInvalidRound
	}

	ctx, span := s.tracer.Start(ctx, "RecordRoundPoints", trace.WithAttributes(
		attribute.Int64("round_id", roundID),
		attribute.Int("entries", len(entries)),
	))
	defer span.End()

	var (
		order  []string
		points = make(map[string]int, len(entries))
		result RecordResult
	)
	for _, e := range entries {
		username := strings.TrimSpace(e.Username)
		if username == "" {
			s.logger.WarnContext(ctx, "Skipping points entry without username",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("round_id", roundID),
				attr.String("raw_points", e.Points),
			)
			result.Skipped = append(result.Skipped, e.Username)
			continue
		}
		if _, seen := points[username]; !seen {
			order = append(order, username)
		}
		points[username] = standingsdomain.ParsePoints(e.Points)
	}

	if len(order) == 0 {
		s.metrics.RecordSkippedEntries(ctx, len(result.Skipped))
		return result, nil
	}

	ids, err := s.resolver.ResolvePlayers(ctx, db, order)
	if err != nil {
		span.RecordError(err)
		return RecordResult{}, fmt.Errorf("resolve players: %w", err)
	}

	rows := make([]standingsdb.PointsEntry, 0, len(order))
	for _, username := range order {
		playerID, ok := ids[username]
		if !ok {
			s.logger.WarnContext(ctx, "Skipping points for unknown player",
				attr.ExtractCorrelationID(ctx),
				attr.Username(username),
				attr.Int64("round_id", roundID),
			)
			result.Skipped = append(result.Skipped, username)
			continue
		}
		if points[username] < 0 {
			return RecordResult{}, fmt.Errorf("%w: %s got %d", ErrNegativePoints, username, points[username])
		}
		rows = append(rows, standingsdb.PointsEntry{
			PlayerID: playerID,
			RoundID:  roundID,
			Points:   points[username],
		})
	}
	s.metrics.RecordSkippedEntries(ctx, len(result.Skipped))

	if len(rows) > 0 {
		if err := s.repo.UpsertPoints(ctx, db, rows); err != nil {
			span.RecordError(err)
			return RecordResult{}, err
		}
	}
	result.Recorded = len(rows)

	s.logger.InfoContext(ctx, "Round points recorded",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("round_id", roundID),
		attr.Int("recorded", result.Recorded),
		attr.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *StandingsService) PointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]standingsdb.RoundPoints, error) {
	return s.repo.GetPointsForRound(ctx, db, roundID)
}

func (s *StandingsService) AllPoints(ctx context.Context, db bun.IDB) ([]standingsdb.RoundPoints, error) {
	return s.repo.ListAllPoints(ctx, db)
}
