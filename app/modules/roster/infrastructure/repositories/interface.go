package rosterdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for roster persistence. Every method takes
// the bun.IDB to run on; nil means the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// UpsertPlayer inserts the player or updates display name and avatar of
	// the player with the same username. The stored row is scanned back into player.
	UpsertPlayer(ctx context.Context, db bun.IDB, player *Player) error

	// UpsertRound inserts the round or updates the label of the round with the
	// same ordinal. The stored row, including its id, is scanned back into round.
	UpsertRound(ctx context.Context, db bun.IDB, round *Round) error

	// GetPlayersByUsernames returns the known players among usernames.
	GetPlayersByUsernames(ctx context.Context, db bun.IDB, usernames []string) ([]Player, error)

	// GetRoundByOrdinal returns ErrNotFound when the ordinal has not been ingested.
	GetRoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*Round, error)

	// ListPlayers returns every player ordered by username.
	ListPlayers(ctx context.Context, db bun.IDB) ([]Player, error)

	// ListRounds returns every round ordered by ordinal.
	ListRounds(ctx context.Context, db bun.IDB) ([]Round, error)

	// MaxOrdinal returns the highest stored ordinal, or 0 when there are no rounds.
	MaxOrdinal(ctx context.Context, db bun.IDB) (int, error)
}
