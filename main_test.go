package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	ledgerservice "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/application"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestUpdateFailed(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit bool
	}{
		{name: "ingestion", err: ingestionservice.ErrIngestionFailed, wantExit: true},
		{name: "wrapped ingestion", err: fmt.Errorf("%w: %w", ingestionservice.ErrIngestionFailed, rosterservice.ErrInvalidOrdinal), wantExit: true},
		{name: "recompute", err: ledgerservice.ErrRecomputeFailed, wantExit: true},
		{name: "partial roster", err: rosterservice.ErrRosterIncomplete, wantExit: true},
		{name: "other errors pass through", err: errors.New("open season.csv: no such file")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := updateFailed(tt.err)
			var exit cli.ExitCoder
			if tt.wantExit {
				require.ErrorAs(t, got, &exit)
				assert.Equal(t, 1, exit.ExitCode())
				assert.Equal(t, "update failed", got.Error())
				return
			}
			assert.Equal(t, tt.err, got)
		})
	}

	assert.NoError(t, updateFailed(nil))
}

func TestPrintSeason(t *testing.T) {
	var buf bytes.Buffer
	err := printSeason(&buf, ledgerservice.SeasonTable{
		Rounds: []ledgerservice.RoundColumn{{Ordinal: 1, Label: "J1"}, {Ordinal: 2, Label: "J2"}},
		Rows: []ledgerservice.SeasonRow{
			{DisplayName: "Bego", PerRound: []int{2, 2}, Total: 4},
			{DisplayName: "Ane", PerRound: []int{0, 1}, Total: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PLAYER  J1  J2  TOTAL\nBego    2   2   4\nAne     0   1   1\n", buf.String())
}

func TestPrintRound(t *testing.T) {
	var buf bytes.Buffer
	printRound(&buf, ingestionservice.RoundResult{Ordinal: 3, Recorded: 4, HistoryRows: 12, Skipped: []string{"ghost"}})
	assert.Equal(t, "round 3: 4 points recorded, 12 history rows\n  skipped: ghost\n", buf.String())
}

func TestCLI_Commands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newCLI().Commands {
		names[c.Name] = true
	}
	for _, want := range []string{
		"ingest-roster", "ingest-round", "append-round", "ingest-feed", "recompute",
		"standings", "debts", "export", "chart", "enqueue", "serve",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
