package rosterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new roster repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) UpsertPlayer(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(player).
		On("CONFLICT (username) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("avatar_url = EXCLUDED.avatar_url").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rosterdb.UpsertPlayer: %w", err)
	}
	return nil
}

func (r *Impl) UpsertRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	set := "label = EXCLUDED.label"
	if round.DefaultLabel {
		set = "label = r.label"
	}
	_, err := db.NewInsert().
		Model(round).
		On("CONFLICT (ordinal) DO UPDATE").
		Set(set).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("rosterdb.UpsertRound: %w", err)
	}
	return nil
}

func (r *Impl) GetPlayersByUsernames(ctx context.Context, db bun.IDB, usernames []string) ([]Player, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var players []Player
	err := db.NewSelect().
		Model(&players).
		Where("username IN (?)", bun.In(usernames)).
		Order("username ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rosterdb.GetPlayersByUsernames: %w", err)
	}
	return players, nil
}

func (r *Impl) GetRoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("ordinal = ?", ordinal).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rosterdb.GetRoundByOrdinal: %w", err)
	}
	return round, nil
}

func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB) ([]Player, error) {
	db = r.resolveDB(db)
	var players []Player
	if err := db.NewSelect().Model(&players).Order("username ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.ListPlayers: %w", err)
	}
	return players, nil
}

func (r *Impl) ListRounds(ctx context.Context, db bun.IDB) ([]Round, error) {
	db = r.resolveDB(db)
	var rounds []Round
	if err := db.NewSelect().Model(&rounds).Order("ordinal ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rosterdb.ListRounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) MaxOrdinal(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)
	var maxOrdinal int
	err := db.NewSelect().
		Model((*Round)(nil)).
		ColumnExpr("COALESCE(MAX(ordinal), 0)").
		Scan(ctx, &maxOrdinal)
	if err != nil {
		return 0, fmt.Errorf("rosterdb.MaxOrdinal: %w", err)
	}
	return maxOrdinal, nil
}
