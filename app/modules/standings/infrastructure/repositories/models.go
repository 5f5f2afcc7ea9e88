package standingsdb

import "github.com/uptrace/bun"

// PointsEntry is the score of one player in one round. Re-ingesting a round
// overwrites it.
type PointsEntry struct {
	bun.BaseModel `bun:"table:points_entries,alias:pe"`

	PlayerID int64 `bun:"player_id,pk"`
	RoundID  int64 `bun:"round_id,pk"`
	Points   int   `bun:"points,notnull,default:0"`
}

// RoundPoints is a PointsEntry joined with the identity needed to rank it.
type RoundPoints struct {
	PlayerID     int64  `bun:"player_id"`
	RoundID      int64  `bun:"round_id"`
	RoundOrdinal int    `bun:"round_ordinal"`
	Username     string `bun:"username"`
	Points       int    `bun:"points"`
}
