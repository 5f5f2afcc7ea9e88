package ledgerdb

import "github.com/uptrace/bun"

// DebtHistoryEntry is the debt of one player for one round. Rows are only
// ever written by a recompute.
type DebtHistoryEntry struct {
	bun.BaseModel `bun:"table:debt_history,alias:dh"`

	PlayerID int64 `bun:"player_id,pk"`
	RoundID  int64 `bun:"round_id,pk"`
	Amount   int   `bun:"amount,notnull,default:0"`
}

// DebtTotal is the sum of a player's DebtHistoryEntry amounts.
type DebtTotal struct {
	bun.BaseModel `bun:"table:debt_totals,alias:dt"`

	PlayerID int64 `bun:"player_id,pk"`
	Amount   int   `bun:"amount,notnull,default:0"`
}
