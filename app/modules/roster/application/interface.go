package rosterservice

import (
	"context"

	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
)

// Service defines the contract for the roster registry. Methods taking a
// bun.IDB run on that handle so callers can compose them in one transaction;
// nil runs on the service's own connection.
type Service interface {
	// UpsertPlayer creates or refreshes the player keyed by username.
	UpsertPlayer(ctx context.Context, db bun.IDB, entry sharedtypes.RosterEntry) (*rosterdb.Player, error)

	// UpsertRound creates the round keyed by ordinal or updates its label and
	// returns its durable id.
	UpsertRound(ctx context.Context, db bun.IDB, ordinal int, label string) (int64, error)

	// NextOrdinal returns the ordinal the next appended round should take.
	NextOrdinal(ctx context.Context, db bun.IDB) (int, error)

	// ResolvePlayers maps the known usernames to player ids. Unknown usernames
	// are absent from the result.
	ResolvePlayers(ctx context.Context, db bun.IDB, usernames []string) (map[string]int64, error)

	// IngestRoster upserts every entry independently. It returns
	// ErrRosterIncomplete when any entry failed.
	IngestRoster(ctx context.Context, entries []sharedtypes.RosterEntry) (RosterResult, error)

	// RoundByOrdinal returns ErrRoundNotFound when the ordinal was never ingested.
	RoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*rosterdb.Round, error)

	ListPlayers(ctx context.Context, db bun.IDB) ([]rosterdb.Player, error)
	ListRounds(ctx context.Context, db bun.IDB) ([]rosterdb.Round, error)
}
