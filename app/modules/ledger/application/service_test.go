package ledgerservice

import (
	"bytes"
	"context"
	"errors"
	"testing"

	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	standingsservice "github.com/Black-And-White-Club/league-ledger/app/modules/standings/application"
	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

type harness struct {
	ledgerRepo *ledgerdb.FakeRepository
	rosterSvc  *rosterservice.RosterService
	points     *standingsservice.StandingsService
	svc        *LedgerService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := observability.NoOpLogger
	metrics := observability.NoOpMetrics{}

	rosterRepo := rosterdb.NewFakeRepository()
	rosterSvc := rosterservice.NewRosterService(rosterRepo, logger, metrics, tracer, map[string]string{"d": "Dani"})
	pointsSvc := standingsservice.NewStandingsService(standingsdb.NewFakeRepository(rosterRepo), rosterSvc, logger, metrics, tracer)
	ledgerRepo := ledgerdb.NewFakeRepository()

	return &harness{
		ledgerRepo: ledgerRepo,
		rosterSvc:  rosterSvc,
		points:     pointsSvc,
		svc:        NewLedgerService(ledgerRepo, rosterSvc, pointsSvc, logger, metrics, tracer, nil),
	}
}

func (h *harness) round(t *testing.T, ordinal int, points map[string]string) {
	t.Helper()
	ctx := context.Background()
	roundID, err := h.rosterSvc.UpsertRound(ctx, nil, ordinal, "")
	require.NoError(t, err)
	entries := make([]sharedtypes.RawPoints, 0, len(points))
	for username, raw := range points {
		entries = append(entries, sharedtypes.RawPoints{Username: username, Points: raw})
	}
	_, err = h.points.RecordRoundPoints(ctx, nil, roundID, entries)
	require.NoError(t, err)
}

func seedSeason(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		_, err := h.rosterSvc.UpsertPlayer(ctx, nil, sharedtypes.RosterEntry{Username: u, DisplayName: "Player " + u})
		require.NoError(t, err)
	}
	h.round(t, 1, map[string]string{"a": "10", "b": "8 pts", "c": "8", "d": "5"})
	h.round(t, 2, map[string]string{"a": "5", "b": "5", "c": "5", "d": "8", "e": "9"})
}

func totalsByUsername(t *testing.T, table SeasonTable) map[string]int {
	t.Helper()
	out := make(map[string]int, len(table.Rows))
	for _, r := range table.Rows {
		out[r.Username] = r.Total
	}
	return out
}

func TestLedgerService_RecomputeDebts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedSeason(t, h)

	ledger, err := h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)
	require.NoError(t, ledger.Validate())
	assert.Len(t, ledger.History, 9)
	assert.Len(t, ledger.Totals, 5)

	trace := h.ledgerRepo.Trace()
	require.NotEmpty(t, trace)
	assert.Equal(t, "AcquireLedgerLock", trace[0])

	table, err := h.svc.SeasonDebtTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 4, "c": 4, "d": 2, "e": 0}, totalsByUsername(t, table))
}

func TestLedgerService_RecomputeInTxLeavesMetricsToCaller(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedSeason(t, h)
	recorder := &ledgerSizeRecorder{}
	h.svc.metrics = recorder

	_, err := h.svc.RecomputeInTx(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, recorder.sizes)

	_, err = h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{9, 5}}, recorder.sizes)
}

type ledgerSizeRecorder struct {
	observability.NoOpMetrics
	sizes [][2]int
}

func (r *ledgerSizeRecorder) RecordLedgerSize(_ context.Context, historyRows, players int) {
	r.sizes = append(r.sizes, [2]int{historyRows, players})
}

func TestLedgerService_RecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedSeason(t, h)

	_, err := h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)
	history1, totals1 := h.ledgerRepo.Snapshot()

	_, err = h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)
	history2, totals2 := h.ledgerRepo.Snapshot()

	if diff := cmp.Diff(history1, history2); diff != "" {
		t.Errorf("history changed between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(totals1, totals2); diff != "" {
		t.Errorf("totals changed between runs (-first +second):\n%s", diff)
	}
}

func TestLedgerService_RecomputeFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(repo *ledgerdb.FakeRepository)
	}{
		{
			name: "lock unavailable",
			setup: func(repo *ledgerdb.FakeRepository) {
				repo.AcquireLedgerLockFn = func(context.Context, bun.IDB) error { return errors.New("lock timeout") }
			},
		},
		{
			name: "insert totals fails",
			setup: func(repo *ledgerdb.FakeRepository) {
				repo.InsertTotalsFn = func(context.Context, bun.IDB, []ledgerdb.DebtTotal) error { return errors.New("connection reset") }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			seedSeason(t, h)
			tt.setup(h.ledgerRepo)

			_, err := h.svc.RecomputeDebts(ctx)
			require.ErrorIs(t, err, ErrRecomputeFailed)
			assert.Equal(t, ErrRecomputeFailed, err, "storage cause is not leaked")
		})
	}
}

func TestLedgerService_RecomputePanicIsRecovered(t *testing.T) {
	h := newHarness(t)
	seedSeason(t, h)
	h.ledgerRepo.DeleteAllHistoryFn = func(context.Context, bun.IDB) error { panic("boom") }

	_, err := h.svc.RecomputeDebts(context.Background())
	require.ErrorIs(t, err, ErrRecomputeFailed)
}

func TestLedgerService_RoundStandings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedSeason(t, h)
	_, err := h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)

	rows, err := h.svc.RoundStandings(ctx, 1)
	require.NoError(t, err)

	want := []struct {
		rank     int
		username string
		points   int
		debt     int
	}{
		{1, "a", 10, 0},
		{2, "b", 8, 2},
		{2, "c", 8, 2},
		{4, "d", 5, 2},
	}
	require.Len(t, rows, len(want))
	for i, w := range want {
		assert.Equal(t, w.rank, rows[i].Rank, "rank of %s", w.username)
		assert.Equal(t, w.username, rows[i].Username)
		assert.Equal(t, w.points, rows[i].Points)
		assert.Equal(t, w.debt, rows[i].Debt)
	}
	assert.Equal(t, "Dani", rows[3].DisplayName)

	_, err = h.svc.RoundStandings(ctx, 9)
	require.ErrorIs(t, err, rosterservice.ErrRoundNotFound)
}

func TestLedgerService_SeasonDebtTable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedSeason(t, h)
	_, err := h.svc.RecomputeDebts(ctx)
	require.NoError(t, err)

	table, err := h.svc.SeasonDebtTable(ctx)
	require.NoError(t, err)

	assert.Equal(t, []RoundColumn{{Ordinal: 1, Label: "J1"}, {Ordinal: 2, Label: "J2"}}, table.Rounds)

	var order []string
	for _, r := range table.Rows {
		order = append(order, r.DisplayName)
	}
	assert.Equal(t, []string{"Player b", "Player c", "Dani", "Player a", "Player e"}, order)
	assert.Equal(t, []int{2, 2}, table.Rows[0].PerRound)
	assert.Equal(t, []int{0, 0}, table.Rows[4].PerRound)
}

func TestWriteSeasonWorkbook(t *testing.T) {
	table := SeasonTable{
		Rounds: []RoundColumn{{Ordinal: 1, Label: "J1"}, {Ordinal: 2, Label: "J2"}},
		Rows: []SeasonRow{
			{Username: "b", DisplayName: "Bego", PerRound: []int{2, 2}, Total: 4},
			{Username: "a", DisplayName: "Ane", PerRound: []int{0, 1}, Total: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSeasonWorkbook(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(seasonSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Player", "J1", "J2", "Total"},
		{"Bego", "2", "2", "4"},
		{"Ane", "0", "1", "1"},
	}, rows)

	require.ErrorIs(t, WriteSeasonWorkbook(&buf, SeasonTable{}), ErrNoData)
}

func TestGenerateDebtChart(t *testing.T) {
	pngMagic := []byte("\x89PNG")

	t.Run("bars", func(t *testing.T) {
		var buf bytes.Buffer
		table := SeasonTable{Rows: []SeasonRow{
			{DisplayName: "Bego", Total: 4},
			{DisplayName: "Ane", Total: 0},
		}}
		require.NoError(t, GenerateDebtChart(&buf, table, DefaultPalette))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	})

	t.Run("placeholder without debt", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, GenerateDebtChart(&buf, SeasonTable{}, DefaultPalette))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	})
}
