package standingsdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new standings repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) UpsertPoints(ctx context.Context, db bun.IDB, entries []PointsEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&entries).
		On("CONFLICT (player_id, round_id) DO UPDATE").
		Set("points = EXCLUDED.points").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.UpsertPoints: %w", err)
	}
	return nil
}

func (r *Impl) selectRoundPoints(db bun.IDB) *bun.SelectQuery {
	return db.NewSelect().
		Model((*PointsEntry)(nil)).
		ColumnExpr("pe.player_id, pe.round_id, pe.points").
		ColumnExpr("r.ordinal AS round_ordinal").
		ColumnExpr("p.username").
		Join("JOIN rounds AS r ON r.id = pe.round_id").
		Join("JOIN players AS p ON p.id = pe.player_id")
}

func (r *Impl) GetPointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]RoundPoints, error) {
	db = r.resolveDB(db)
	var rows []RoundPoints
	err := r.selectRoundPoints(db).
		Where("pe.round_id = ?", roundID).
		OrderExpr("p.username ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.GetPointsForRound: %w", err)
	}
	return rows, nil
}

func (r *Impl) ListAllPoints(ctx context.Context, db bun.IDB) ([]RoundPoints, error) {
	db = r.resolveDB(db)
	var rows []RoundPoints
	err := r.selectRoundPoints(db).
		OrderExpr("r.ordinal ASC, p.username ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.ListAllPoints: %w", err)
	}
	return rows, nil
}
