package ingestionservice

import (
	"context"
	"errors"
	"testing"

	ledgerservice "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	standingsservice "github.com/Black-And-White-Club/league-ledger/app/modules/standings/application"
	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type testDeps struct {
	rosterRepo *rosterdb.FakeRepository
	pointsRepo *standingsdb.FakeRepository
	ledgerRepo *ledgerdb.FakeRepository
	rosterSvc  *rosterservice.RosterService
	pointsSvc  *standingsservice.StandingsService
	ledgerSvc  *ledgerservice.LedgerService
	metrics    *ledgerSizeRecorder
	svc        *IngestionService
}

// ledgerSizeRecorder keeps every RecordLedgerSize call.
type ledgerSizeRecorder struct {
	observability.NoOpMetrics
	sizes [][2]int
}

func (r *ledgerSizeRecorder) RecordLedgerSize(_ context.Context, historyRows, players int) {
	r.sizes = append(r.sizes, [2]int{historyRows, players})
}

// rollbackAfterRecompute rebuilds the ledger and then fails, the way a
// commit failure after a successful recompute would.
type rollbackAfterRecompute struct {
	ledger Recomputer
}

func (r rollbackAfterRecompute) RecomputeInTx(ctx context.Context, db bun.IDB) (ledgerdomain.Ledger, error) {
	if _, err := r.ledger.RecomputeInTx(ctx, db); err != nil {
		return ledgerdomain.Ledger{}, err
	}
	return ledgerdomain.Ledger{}, errors.New("could not serialize access")
}

// failingRounds rejects upserts of one ordinal and stores the rest.
type failingRounds struct {
	*rosterdb.FakeRepository
	ordinal int
}

func (f failingRounds) UpsertRound(ctx context.Context, db bun.IDB, round *rosterdb.Round) error {
	if round.Ordinal == f.ordinal {
		return errors.New("deadlock detected")
	}
	return f.FakeRepository.UpsertRound(ctx, db, round)
}

func newTestDeps() *testDeps {
	return newTestDepsWith(func(r *rosterdb.FakeRepository) rosterdb.Repository { return r })
}

func newTestDepsWith(wrap func(*rosterdb.FakeRepository) rosterdb.Repository) *testDeps {
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := observability.NoOpLogger
	metrics := &ledgerSizeRecorder{}

	rosterRepo := rosterdb.NewFakeRepository()
	pointsRepo := standingsdb.NewFakeRepository(rosterRepo)
	ledgerRepo := ledgerdb.NewFakeRepository()

	rosterSvc := rosterservice.NewRosterService(wrap(rosterRepo), logger, metrics, tracer, nil)
	pointsSvc := standingsservice.NewStandingsService(pointsRepo, rosterSvc, logger, metrics, tracer)
	ledgerSvc := ledgerservice.NewLedgerService(ledgerRepo, rosterSvc, pointsSvc, logger, metrics, tracer, nil)

	return &testDeps{
		rosterRepo: rosterRepo,
		pointsRepo: pointsRepo,
		ledgerRepo: ledgerRepo,
		rosterSvc:  rosterSvc,
		pointsSvc:  pointsSvc,
		ledgerSvc:  ledgerSvc,
		metrics:    metrics,
		svc:        NewIngestionService(rosterSvc, pointsSvc, ledgerSvc, ledgerRepo, logger, metrics, tracer, nil),
	}
}

func raw(pairs ...string) []sharedtypes.RawPoints {
	out := make([]sharedtypes.RawPoints, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, sharedtypes.RawPoints{Username: pairs[i], Points: pairs[i+1]})
	}
	return out
}

func roster(usernames ...string) []sharedtypes.RosterEntry {
	out := make([]sharedtypes.RosterEntry, len(usernames))
	for i, u := range usernames {
		out[i] = sharedtypes.RosterEntry{Username: u}
	}
	return out
}

func totals(t *testing.T, d *testDeps) map[string]int {
	t.Helper()
	table, err := d.ledgerSvc.SeasonDebtTable(context.Background())
	require.NoError(t, err)
	out := map[string]int{}
	for _, r := range table.Rows {
		out[r.Username] = r.Total
	}
	return out
}

func TestIngestionService_IngestRound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C", "D"))
	require.NoError(t, err)

	result, err := d.svc.IngestRound(ctx, 1, "Jornada 1", raw("A", "10", "B", "8 pts", "C", "8", "D", "5", "ghost", "1"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Ordinal)
	assert.NotZero(t, result.RoundID)
	assert.Equal(t, 4, result.Recorded)
	assert.Equal(t, []string{"ghost"}, result.Skipped)
	assert.Equal(t, 4, result.HistoryRows)
	assert.Equal(t, 4, result.Players)

	assert.Equal(t, map[string]int{"A": 0, "B": 2, "C": 2, "D": 2}, totals(t, d))
	assert.Equal(t, "AcquireLedgerLock", d.ledgerRepo.Trace()[0])
}

func TestIngestionService_ReingestOverwritesRound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C", "D"))
	require.NoError(t, err)

	_, err = d.svc.IngestRound(ctx, 1, "J1", raw("A", "1", "B", "2", "C", "3", "D", "4"))
	require.NoError(t, err)
	_, err = d.svc.IngestRound(ctx, 2, "J2", raw("A", "9", "B", "9", "C", "1", "D", "2"))
	require.NoError(t, err)
	before := d.pointsRepo.Snapshot()

	_, err = d.svc.IngestRound(ctx, 2, "J2", raw("A", "1", "B", "2", "C", "3", "D", "4"))
	require.NoError(t, err)
	after := d.pointsRepo.Snapshot()

	_, rounds := d.rosterRepo.Snapshot()
	players, _ := d.rosterRepo.Snapshot()
	round1, round2 := rounds[1].ID, rounds[2].ID
	for _, u := range []string{"A", "B", "C", "D"} {
		id := players[u].ID
		assert.Equal(t, before[[2]int64{id, round1}], after[[2]int64{id, round1}], "round 1 untouched for %s", u)
	}
	assert.Equal(t, 1, after[[2]int64{players["A"].ID, round2}])
	assert.Len(t, rounds, 2)

	assert.Equal(t, map[string]int{"A": 4, "B": 4, "C": 4, "D": 0}, totals(t, d))
}

func TestIngestionService_IngestRoundFailures(t *testing.T) {
	ctx := context.Background()
	storageErr := errors.New("connection reset by peer")

	tests := []struct {
		name          string
		setup         func(d *testDeps)
		wantRecompute bool
	}{
		{
			name: "lock fails",
			setup: func(d *testDeps) {
				d.ledgerRepo.AcquireLedgerLockFn = func(context.Context, bun.IDB) error { return storageErr }
			},
		},
		{
			name: "round upsert fails",
			setup: func(d *testDeps) {
				d.rosterRepo.UpsertRoundFn = func(context.Context, bun.IDB, *rosterdb.Round) error { return storageErr }
			},
		},
		{
			name: "points write fails",
			setup: func(d *testDeps) {
				d.pointsRepo.UpsertPointsFn = func(context.Context, bun.IDB, []standingsdb.PointsEntry) error { return storageErr }
			},
		},
		{
			name: "recompute fails",
			setup: func(d *testDeps) {
				d.ledgerRepo.InsertHistoryFn = func(context.Context, bun.IDB, []ledgerdb.DebtHistoryEntry) error { return storageErr }
			},
			wantRecompute: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C"))
			require.NoError(t, err)
			tt.setup(d)

			_, err = d.svc.IngestRound(ctx, 1, "J1", raw("A", "1", "B", "2", "C", "3"))
			require.ErrorIs(t, err, ErrIngestionFailed)
			assert.NotErrorIs(t, err, storageErr, "storage cause stays internal")

			assert.Equal(t, tt.wantRecompute, contains(d.ledgerRepo.Trace(), "DeleteAllHistory"))
		})
	}
}

func TestIngestionService_LedgerSizeRecordedAfterCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("committed round", func(t *testing.T) {
		d := newTestDeps()
		_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C", "D"))
		require.NoError(t, err)

		_, err = d.svc.IngestRound(ctx, 1, "J1", raw("A", "4", "B", "3", "C", "2", "D", "1"))
		require.NoError(t, err)
		assert.Equal(t, [][2]int{{4, 4}}, d.metrics.sizes)
	})

	t.Run("rolled back round", func(t *testing.T) {
		d := newTestDeps()
		_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C", "D"))
		require.NoError(t, err)
		svc := NewIngestionService(
			d.rosterSvc, d.pointsSvc, rollbackAfterRecompute{ledger: d.ledgerSvc}, d.ledgerRepo,
			observability.NoOpLogger, d.metrics, noop.NewTracerProvider().Tracer("test"), nil,
		)

		_, err = svc.IngestRound(ctx, 1, "J1", raw("A", "4", "B", "3", "C", "2", "D", "1"))
		require.ErrorIs(t, err, ErrIngestionFailed)
		assert.Empty(t, d.metrics.sizes)
	})
}

func TestIngestionService_RosterAddsPlayersBeforeRecompute(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	_, err := d.svc.IngestRoster(ctx, roster("A", "B", "C"))
	require.NoError(t, err)
	_, err = d.svc.IngestRound(ctx, 1, "J1", raw("A", "3", "B", "2", "C", "1"))
	require.NoError(t, err)

	_, err = d.svc.IngestRoster(ctx, roster("E"))
	require.NoError(t, err)

	_, storedTotals := d.ledgerRepo.Snapshot()
	assert.Len(t, storedTotals, 3, "roster ingestion leaves the ledger alone")
	assert.Equal(t, map[string]int{"A": 2, "B": 2, "C": 2, "E": 0}, totals(t, d))

	_, err = d.ledgerSvc.RecomputeDebts(ctx)
	require.NoError(t, err)
	_, storedTotals = d.ledgerRepo.Snapshot()
	assert.Len(t, storedTotals, 4)
}

func TestIngestionService_InvalidOrdinal(t *testing.T) {
	d := newTestDeps()

	_, err := d.svc.IngestRound(context.Background(), 0, "J0", raw("A", "1"))
	require.ErrorIs(t, err, ErrIngestionFailed)
	require.ErrorIs(t, err, rosterservice.ErrInvalidOrdinal)
	assert.Empty(t, d.ledgerRepo.Trace())
}

func TestIngestionService_AppendRound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	_, err := d.svc.IngestRoster(ctx, roster("A", "B"))
	require.NoError(t, err)

	first, err := d.svc.AppendRound(ctx, "", raw("A", "1", "B", "2"))
	require.NoError(t, err)
	second, err := d.svc.AppendRound(ctx, "", raw("A", "3", "B", "4"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Ordinal)
	assert.Equal(t, 2, second.Ordinal)
	_, rounds := d.rosterRepo.Snapshot()
	assert.Equal(t, "J2", rounds[2].Label)
}

func TestIngestionService_IngestFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("rounds get ordinals in feed order", func(t *testing.T) {
		d := newTestDeps()
		feed := sharedtypes.Feed{
			Roster: roster("A", "B", "C", "D", "E"),
			Rounds: []sharedtypes.RoundFeed{
				{Label: "J1", Entries: raw("A", "10", "B", "8", "C", "8", "D", "5")},
				{Label: "J2", Entries: raw("A", "5", "B", "5", "C", "5", "D", "8", "E", "9")},
			},
		}

		result, err := d.svc.IngestFeed(ctx, feed)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Roster.Upserted)
		require.Len(t, result.Rounds, 2)
		assert.Equal(t, 1, result.Rounds[0].Ordinal)
		assert.Equal(t, 2, result.Rounds[1].Ordinal)

		assert.Equal(t, map[string]int{"A": 2, "B": 4, "C": 4, "D": 2, "E": 0}, totals(t, d))
	})

	t.Run("stops at first failed round", func(t *testing.T) {
		d := newTestDepsWith(func(r *rosterdb.FakeRepository) rosterdb.Repository {
			return failingRounds{FakeRepository: r, ordinal: 2}
		})
		feed := sharedtypes.Feed{
			Roster: roster("A", "B"),
			Rounds: []sharedtypes.RoundFeed{
				{Label: "J1", Entries: raw("A", "1", "B", "2")},
				{Label: "J2", Entries: raw("A", "3", "B", "4")},
				{Label: "J3", Entries: raw("A", "5", "B", "6")},
			},
		}

		result, err := d.svc.IngestFeed(ctx, feed)
		require.ErrorIs(t, err, ErrIngestionFailed)
		assert.Len(t, result.Rounds, 1)
		_, rounds := d.rosterRepo.Snapshot()
		assert.NotContains(t, rounds, 3)
	})

	t.Run("partial roster still ingests rounds", func(t *testing.T) {
		d := newTestDeps()
		feed := sharedtypes.Feed{
			Roster: []sharedtypes.RosterEntry{{Username: "A"}, {Username: " "}, {Username: "B"}},
			Rounds: []sharedtypes.RoundFeed{{Label: "J1", Entries: raw("A", "1", "B", "2")}},
		}

		result, err := d.svc.IngestFeed(ctx, feed)
		require.ErrorIs(t, err, rosterservice.ErrRosterIncomplete)
		assert.Equal(t, 2, result.Roster.Upserted)
		assert.Len(t, result.Rounds, 1)
	})
}

func contains(trace []string, step string) bool {
	for _, s := range trace {
		if s == step {
			return true
		}
	}
	return false
}
