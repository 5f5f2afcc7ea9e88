package rosterservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RosterService implements the Service interface.
type RosterService struct {
	repo         rosterdb.Repository
	logger       *slog.Logger
	metrics      observability.Metrics
	tracer       trace.Tracer
	displayNames map[string]string
}

var _ Service = (*RosterService)(nil)

// NewRosterService creates a new RosterService. displayNames overrides the
// display name reported by the feed for the given usernames.
func NewRosterService(
	repo rosterdb.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	displayNames map[string]string,
) *RosterService {
	return &RosterService{
		repo:         repo,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
		displayNames: displayNames,
	}
}

func (s *RosterService) UpsertPlayer(ctx context.Context, db bun.IDB, entry sharedtypes.RosterEntry) (*rosterdb.Player, error) {
	username := strings.TrimSpace(entry.Username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	player := &rosterdb.Player{
		Username:    username,
		DisplayName: s.displayName(username, entry.DisplayName),
		AvatarURL:   strings.TrimSpace(entry.AvatarURL),
	}
	if err := s.repo.UpsertPlayer(ctx, db, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *RosterService) displayName(username, reported string) string {
	if override, ok := s.displayNames[username]; ok && override != "" {
		return override
	}
	if name := strings.TrimSpace(reported); name != "" {
		return name
	}
	return username
}

// UpsertRound creates or relabels the round at ordinal and returns its id. A
// blank label names a new round J<ordinal> and leaves an existing label alone.
func (s *RosterService) UpsertRound(ctx context.Context, db bun.IDB, ordinal int, label string) (int64, error) {
	if ordinal < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidOrdinal, ordinal)
	}
	round := &rosterdb.Round{Ordinal: ordinal, Label: strings.TrimSpace(label)}
	if round.Label == "" {
		round.Label = fmt.Sprintf("J%d", ordinal)
		round.DefaultLabel = true
	}

	if err := s.repo.UpsertRound(ctx, db, round); err != nil {
		return 0, err
	}
	return round.ID, nil
}

func (s *RosterService) NextOrdinal(ctx context.Context, db bun.IDB) (int, error) {
	maxOrdinal, err := s.repo.MaxOrdinal(ctx, db)
	if err != nil {
		return 0, err
	}
	return maxOrdinal + 1, nil
}

func (s *RosterService) ResolvePlayers(ctx context.Context, db bun.IDB, usernames []string) (map[string]int64, error) {
	players, err := s.repo.GetPlayersByUsernames(ctx, db, usernames)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(players))
	for _, p := range players {
		ids[p.Username] = p.ID
	}
	return ids, nil
}

// IngestRoster applies UpsertPlayer to every entry on the service connection.
// Entries do not share a transaction, so one failure leaves the others stored.
// The debt ledger is not touched: a new player has no debt_totals row until
// the next recompute, and SeasonDebtTable lists it with a zero total until then.
func (s *RosterService) IngestRoster(ctx context.Context, entries []sharedtypes.RosterEntry) (RosterResult, error) {
	const operation = "IngestRoster"

	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(
		attribute.Int("roster_size", len(entries)),
	))
	defer span.End()

	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operation, time.Since(start))
	}()

	s.logger.InfoContext(ctx, "Ingesting roster",
		attr.ExtractCorrelationID(ctx),
		attr.Int("roster_size", len(entries)),
	)

	var result RosterResult
	for _, entry := range entries {
		if _, err := s.UpsertPlayer(ctx, nil, entry); err != nil {
			s.logger.WarnContext(ctx, "Failed to upsert player",
				attr.ExtractCorrelationID(ctx),
				attr.Username(entry.Username),
				attr.Error(err),
			)
			result.Failures = append(result.Failures, RosterFailure{
				Username: entry.Username,
				Reason:   err.Error(),
			})
			continue
		}
		result.Upserted++
	}

	if len(result.Failures) > 0 {
		err := fmt.Errorf("%w: %d of %d entries failed", ErrRosterIncomplete, len(result.Failures), len(entries))
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordOperationFailure(ctx, operation)
		return result, err
	}

	s.logger.InfoContext(ctx, "Roster ingested",
		attr.ExtractCorrelationID(ctx),
		attr.Int("upserted", result.Upserted),
	)
	s.metrics.RecordOperationSuccess(ctx, operation)
	return result, nil
}

func (s *RosterService) RoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*rosterdb.Round, error) {
	round, err := s.repo.GetRoundByOrdinal(ctx, db, ordinal)
	if errors.Is(err, rosterdb.ErrNotFound) {
		return nil, fmt.Errorf("%w: ordinal %d", ErrRoundNotFound, ordinal)
	}
	return round, err
}

func (s *RosterService) ListPlayers(ctx context.Context, db bun.IDB) ([]rosterdb.Player, error) {
	return s.repo.ListPlayers(ctx, db)
}

func (s *RosterService) ListRounds(ctx context.Context, db bun.IDB) ([]rosterdb.Round, error) {
	return s.repo.ListRounds(ctx, db)
}
