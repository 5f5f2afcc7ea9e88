package ledgerservice

import (
	"context"
	"io"

	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service owns the derived debt tables and the queries built on them.
type Service interface {
	// RecomputeDebts rebuilds history and totals in its own transaction.
	RecomputeDebts(ctx context.Context) (ledgerdomain.Ledger, error)

	// RecomputeInTx rebuilds history and totals on db, which must be a
	// transaction. It takes the ledger lock itself.
	RecomputeInTx(ctx context.Context, db bun.IDB) (ledgerdomain.Ledger, error)

	RoundStandings(ctx context.Context, ordinal int) ([]StandingRow, error)
	SeasonDebtTable(ctx context.Context) (SeasonTable, error)

	ExportSeasonWorkbook(ctx context.Context, w io.Writer) error
	RenderDebtChart(ctx context.Context, w io.Writer) error
}

// RosterReader is the part of the roster service the ledger reads.
type RosterReader interface {
	ListPlayers(ctx context.Context, db bun.IDB) ([]rosterdb.Player, error)
	ListRounds(ctx context.Context, db bun.IDB) ([]rosterdb.Round, error)
	RoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*rosterdb.Round, error)
}

// PointsReader is the part of the standings service the ledger reads.
type PointsReader interface {
	PointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]standingsdb.RoundPoints, error)
	AllPoints(ctx context.Context, db bun.IDB) ([]standingsdb.RoundPoints, error)
}
