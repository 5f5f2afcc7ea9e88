package standingsdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for points persistence. A nil bun.IDB runs
// on the repository's own connection.
type Repository interface {
	// UpsertPoints writes every entry, overwriting existing (player, round) rows.
	UpsertPoints(ctx context.Context, db bun.IDB, entries []PointsEntry) error

	// GetPointsForRound returns the round's entries ordered by username.
	GetPointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]RoundPoints, error)

	// ListAllPoints returns every entry ordered by round ordinal, then username.
	ListAllPoints(ctx context.Context, db bun.IDB) ([]RoundPoints, error)
}
