package rosterdb

import (
	"github.com/uptrace/bun"
)

// Player is a league participant, keyed externally by username.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Username    string `bun:"username,notnull,unique"`
	DisplayName string `bun:"display_name,notnull"`
	AvatarURL   string `bun:"avatar_url,notnull,default:''"`
}

// Round is one matchday of the season. Ordinal is 1-based and never renumbered.
//
// DefaultLabel marks Label as a generated fallback: it is written when the
// round is created but never replaces a label already stored.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Ordinal      int    `bun:"ordinal,notnull,unique"`
	Label        string `bun:"label,notnull,default:''"`
	DefaultLabel bool   `bun:"-"`
}
