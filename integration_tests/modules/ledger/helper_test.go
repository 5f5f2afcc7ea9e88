package ledgerintegrationtests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/league-ledger/app"
	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/Black-And-White-Club/league-ledger/integration_tests/testutils"
)

type testDeps struct {
	Ctx context.Context
	Env *testutils.TestEnvironment
	App *app.App
}

func setup(t *testing.T) testDeps {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	return testDeps{Ctx: env.Ctx, Env: env, App: env.NewApp(t)}
}

func roster(usernames ...string) []sharedtypes.RosterEntry {
	out := make([]sharedtypes.RosterEntry, len(usernames))
	for i, u := range usernames {
		out[i] = sharedtypes.RosterEntry{Username: u}
	}
	return out
}

func raw(pairs ...string) []sharedtypes.RawPoints {
	out := make([]sharedtypes.RawPoints, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, sharedtypes.RawPoints{Username: pairs[i], Points: pairs[i+1]})
	}
	return out
}

func totals(t *testing.T, d testDeps) map[string]int {
	t.Helper()
	table, err := d.App.Ledger.SeasonDebtTable(d.Ctx)
	require.NoError(t, err)
	out := make(map[string]int, len(table.Rows))
	for _, r := range table.Rows {
		out[r.Username] = r.Total
	}
	return out
}

// storedLedger reads debt history and totals as the database holds them.
func storedLedger(t *testing.T, d testDeps) ([]ledgerdb.DebtHistoryEntry, []ledgerdb.DebtTotal) {
	t.Helper()
	repo := ledgerdb.NewRepository(d.Env.DB)
	history, err := repo.GetHistory(d.Ctx, nil)
	require.NoError(t, err)
	totals, err := repo.GetTotals(d.Ctx, nil)
	require.NoError(t, err)
	return history, totals
}

// requireSumInvariant checks every total against its history rows in SQL.
func requireSumInvariant(t *testing.T, d testDeps) {
	t.Helper()
	var mismatches int
	err := d.Env.DB.NewRaw(`
		SELECT count(*) FROM debt_totals dt
		LEFT JOIN (
			SELECT player_id, sum(amount) AS amount FROM debt_history GROUP BY player_id
		) h ON h.player_id = dt.player_id
		WHERE dt.amount <> coalesce(h.amount, 0)`).Scan(d.Ctx, &mismatches)
	require.NoError(t, err)
	require.Zero(t, mismatches, "debt totals diverge from history")
}

// failingRecomputer lets the round and points writes happen, then fails so
// the surrounding transaction rolls back.
type failingRecomputer struct{}

func (failingRecomputer) RecomputeInTx(context.Context, bun.IDB) (ledgerdomain.Ledger, error) {
	return ledgerdomain.Ledger{}, errors.New("simulated recompute failure")
}

var _ ingestionservice.Recomputer = failingRecomputer{}
