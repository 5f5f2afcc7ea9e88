package standingsservice

import (
	"context"

	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
)

// Service holds one point value per (player, round).
type Service interface {
	RecordPoints(ctx context.Context, db bun.IDB, playerID, roundID int64, points int) error
	RecordRoundPoints(ctx context.Context, db bun.IDB, roundID int64, entries []sharedtypes.RawPoints) (RecordResult, error)
	PointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]standingsdb.RoundPoints, error)
	AllPoints(ctx context.Context, db bun.IDB) ([]standingsdb.RoundPoints, error)
}

// PlayerResolver maps usernames to player ids. The roster service satisfies it.
type PlayerResolver interface {
	ResolvePlayers(ctx context.Context, db bun.IDB, usernames []string) (map[string]int64, error)
}
