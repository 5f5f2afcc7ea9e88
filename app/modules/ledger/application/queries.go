package ledgerservice

import (
	"cmp"
	"context"
	"slices"

	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// RoundStandings returns the leaderboard of one round, best score first,
// with the debt each player took on in that round.
func (s *LedgerService) RoundStandings(ctx context.Context, ordinal int) ([]StandingRow, error) {
	return withTelemetry(s, ctx, "RoundStandings", func(ctx context.Context) ([]StandingRow, error) {
		return runInTx(s, ctx, readOnly, func(ctx context.Context, db bun.IDB) ([]StandingRow, error) {
			round, err := s.roster.RoundByOrdinal(ctx, db, ordinal)
			if err != nil {
				return nil, err
			}
			points, err := s.standings.PointsForRound(ctx, db, round.ID)
			if err != nil {
				return nil, err
			}
			players, err := s.playersByID(ctx, db)
			if err != nil {
				return nil, err
			}
			history, err := s.repo.GetHistory(ctx, db)
			if err != nil {
				return nil, err
			}
			debts := make(map[int64]int)
			for _, h := range history {
				if h.RoundID == round.ID {
					debts[h.PlayerID] = h.Amount
				}
			}

			rows := make([]StandingRow, 0, len(points))
			for _, p := range points {
				player := players[p.PlayerID]
				rows = append(rows, StandingRow{
					PlayerID:    p.PlayerID,
					Username:    p.Username,
					DisplayName: player.DisplayName,
					AvatarURL:   player.AvatarURL,
					Points:      p.Points,
					Debt:        debts[p.PlayerID],
				})
			}
			slices.SortFunc(rows, func(a, b StandingRow) int {
				if c := cmp.Compare(b.Points, a.Points); c != 0 {
					return c
				}
				return cmp.Compare(a.Username, b.Username)
			})
			for i := range rows {
				rows[i].Rank = i + 1
				if i > 0 && rows[i].Points == rows[i-1].Points {
					rows[i].Rank = rows[i-1].Rank
				}
			}
			return rows, nil
		})
	})
}

// SeasonDebtTable returns every player's debt per round and in total, highest
// total first. Players with equal totals are ordered by display name.
func (s *LedgerService) SeasonDebtTable(ctx context.Context) (SeasonTable, error) {
	return withTelemetry(s, ctx, "SeasonDebtTable", func(ctx context.Context) (SeasonTable, error) {
		return runInTx(s, ctx, readOnly, s.seasonTable)
	})
}

func (s *LedgerService) seasonTable(ctx context.Context, db bun.IDB) (SeasonTable, error) {
	rounds, err := s.roster.ListRounds(ctx, db)
	if err != nil {
		return SeasonTable{}, err
	}
	players, err := s.roster.ListPlayers(ctx, db)
	if err != nil {
		return SeasonTable{}, err
	}
	history, err := s.repo.GetHistory(ctx, db)
	if err != nil {
		return SeasonTable{}, err
	}
	totals, err := s.repo.GetTotals(ctx, db)
	if err != nil {
		return SeasonTable{}, err
	}

	table := SeasonTable{Rounds: make([]RoundColumn, len(rounds))}
	column := make(map[int64]int, len(rounds))
	for i, r := range rounds {
		table.Rounds[i] = RoundColumn{Ordinal: r.Ordinal, Label: r.Label}
		column[r.ID] = i
	}

	rowOf := make(map[int64]int, len(players))
	table.Rows = make([]SeasonRow, len(players))
	for i, p := range players {
		table.Rows[i] = SeasonRow{
			PlayerID:    p.ID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			PerRound:    make([]int, len(rounds)),
		}
		rowOf[p.ID] = i
	}
	for _, h := range history {
		row, okRow := rowOf[h.PlayerID]
		col, okCol := column[h.RoundID]
		if okRow && okCol {
			table.Rows[row].PerRound[col] = h.Amount
		}
	}
	for _, t := range totals {
		if row, ok := rowOf[t.PlayerID]; ok {
			table.Rows[row].Total = t.Amount
		}
	}

	slices.SortFunc(table.Rows, func(a, b SeasonRow) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		if c := cmp.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	return table, nil
}

func (s *LedgerService) playersByID(ctx context.Context, db bun.IDB) (map[int64]rosterdb.Player, error) {
	players, err := s.roster.ListPlayers(ctx, db)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]rosterdb.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	return byID, nil
}
