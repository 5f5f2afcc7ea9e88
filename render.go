package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Black-And-White-Club/league-ledger/app"
	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	ledgerservice "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/application"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/urfave/cli/v2"
)

func feedPath(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("%s: expected exactly one feed file", c.Command.Name), 2)
	}
	return c.Args().First(), nil
}

// loadSingleRound reads a feed that must hold exactly one round.
func loadSingleRound(a *app.App, path string) (sharedtypes.RoundFeed, error) {
	feed, err := a.Feeds.Load(path)
	if err != nil {
		return sharedtypes.RoundFeed{}, err
	}
	if len(feed.Rounds) != 1 {
		return sharedtypes.RoundFeed{}, fmt.Errorf("%s: expected one round, found %d", path, len(feed.Rounds))
	}
	return feed.Rounds[0], nil
}

func writeFile(path string, fn func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fn(f)
}

func printRoster(w io.Writer, r ingestionservice.RosterResult) {
	fmt.Fprintf(w, "roster: %d players upserted\n", r.Upserted)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  failed %q: %s\n", f.Username, f.Reason)
	}
}

func printRound(w io.Writer, r ingestionservice.RoundResult) {
	fmt.Fprintf(w, "round %d: %d points recorded, %d history rows\n", r.Ordinal, r.Recorded, r.HistoryRows)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "  skipped: %s\n", strings.Join(r.Skipped, ", "))
	}
}

func printStandings(w io.Writer, rows []ledgerservice.StandingRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tPOINTS\tDEBT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", r.Rank, r.DisplayName, r.Points, r.Debt)
	}
	return tw.Flush()
}

func printSeason(w io.Writer, table ledgerservice.SeasonTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"PLAYER"}
	for _, r := range table.Rounds {
		header = append(header, r.Label)
	}
	header = append(header, "TOTAL")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.PerRound)+2)
		cells = append(cells, row.DisplayName)
		for _, amount := range row.PerRound {
			cells = append(cells, fmt.Sprint(amount))
		}
		cells = append(cells, fmt.Sprint(row.Total))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
