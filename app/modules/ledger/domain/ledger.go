package ledgerdomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrTotalsDiverged is returned by Ledger.Validate when a total is not the
// sum of its history rows.
var ErrTotalsDiverged = errors.New("debt totals diverge from history")

// RoundScore is a Score tagged with the round it belongs to.
type RoundScore struct {
	RoundID      int64
	RoundOrdinal int
	Score
}

// HistoryRow is the debt of one player for one round.
type HistoryRow struct {
	PlayerID     int64
	RoundID      int64
	RoundOrdinal int
	Amount       int
}

// TotalRow is the running debt of one player across the season.
type TotalRow struct {
	PlayerID int64
	Amount   int
}

// Ledger is the full derived state produced by a recompute.
type Ledger struct {
	History []HistoryRow
	Totals  []TotalRow
}

// BuildLedger applies AssessRound to every round independently and sums the
// result per player. Every player in playerIDs gets a total, zero when they
// have no history. History is ordered by round ordinal then player id and
// totals by player id, so equal input always yields an equal Ledger.
func BuildLedger(playerIDs []int64, scores []RoundScore) Ledger {
	type roundKey struct {
		ordinal int
		id      int64
	}
	byRound := map[roundKey][]Score{}
	for _, s := range scores {
		k := roundKey{ordinal: s.RoundOrdinal, id: s.RoundID}
		byRound[k] = append(byRound[k], s.Score)
	}
	rounds := make([]roundKey, 0, len(byRound))
	for k := range byRound {
		rounds = append(rounds, k)
	}
	slices.SortFunc(rounds, func(a, b roundKey) int {
		if c := cmp.Compare(a.ordinal, b.ordinal); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	totals := make(map[int64]int, len(playerIDs))
	for _, id := range playerIDs {
		totals[id] = 0
	}

	var ledger Ledger
	for _, round := range rounds {
		assessed := AssessRound(byRound[round])
		slices.SortFunc(assessed, func(a, b Assessment) int {
			return cmp.Compare(a.PlayerID, b.PlayerID)
		})
		for _, a := range assessed {
			ledger.History = append(ledger.History, HistoryRow{
				PlayerID:     a.PlayerID,
				RoundID:      round.id,
				RoundOrdinal: round.ordinal,
				Amount:       int(a.Penalty),
			})
			totals[a.PlayerID] += int(a.Penalty)
		}
	}

	ledger.Totals = make([]TotalRow, 0, len(totals))
	for id, amount := range totals {
		ledger.Totals = append(ledger.Totals, TotalRow{PlayerID: id, Amount: amount})
	}
	slices.SortFunc(ledger.Totals, func(a, b TotalRow) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return ledger
}

// Validate checks that every total equals the sum of the player's history.
func (l Ledger) Validate() error {
	sums := make(map[int64]int, len(l.Totals))
	for _, h := range l.History {
		sums[h.PlayerID] += h.Amount
	}
	seen := make(map[int64]bool, len(l.Totals))
	for _, t := range l.Totals {
		seen[t.PlayerID] = true
		if sums[t.PlayerID] != t.Amount {
			return fmt.Errorf("%w: player %d total %d, history %d", ErrTotalsDiverged, t.PlayerID, t.Amount, sums[t.PlayerID])
		}
	}
	for id := range sums {
		if !seen[id] {
			return fmt.Errorf("%w: player %d has history but no total", ErrTotalsDiverged, id)
		}
	}
	return nil
}
