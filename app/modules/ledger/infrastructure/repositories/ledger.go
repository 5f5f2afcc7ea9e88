package ledgerdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ledgerLockKey names the advisory lock shared by all ledger writers.
const ledgerLockKey = "ledger"

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) AcquireLedgerLock(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", ledgerLockKey).Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.AcquireLedgerLock: %w", err)
	}
	return nil
}

func (r *Impl) DeleteAllHistory(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*DebtHistoryEntry)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.DeleteAllHistory: %w", err)
	}
	return nil
}

func (r *Impl) DeleteAllTotals(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*DebtTotal)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.DeleteAllTotals: %w", err)
	}
	return nil
}

func (r *Impl) InsertHistory(ctx context.Context, db bun.IDB, rows []DebtHistoryEntry) error {
	if len(rows) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.InsertHistory: %w", err)
	}
	return nil
}

func (r *Impl) InsertTotals(ctx context.Context, db bun.IDB, rows []DebtTotal) error {
	if len(rows) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.InsertTotals: %w", err)
	}
	return nil
}

func (r *Impl) GetHistory(ctx context.Context, db bun.IDB) ([]DebtHistoryEntry, error) {
	db = r.resolveDB(db)
	var rows []DebtHistoryEntry
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("dh.round_id ASC, dh.player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.GetHistory: %w", err)
	}
	return rows, nil
}

func (r *Impl) GetTotals(ctx context.Context, db bun.IDB) ([]DebtTotal, error) {
	db = r.resolveDB(db)
	var rows []DebtTotal
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("dt.player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.GetTotals: %w", err)
	}
	return rows, nil
}
