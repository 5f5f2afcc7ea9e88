package ledgerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for the derived debt tables. Writers must
// run inside a transaction that holds AcquireLedgerLock.
type Repository interface {
	// AcquireLedgerLock takes the transaction scoped advisory lock that
	// serializes every ledger writer. db must be a transaction.
	AcquireLedgerLock(ctx context.Context, db bun.IDB) error

	DeleteAllHistory(ctx context.Context, db bun.IDB) error
	DeleteAllTotals(ctx context.Context, db bun.IDB) error
	InsertHistory(ctx context.Context, db bun.IDB, rows []DebtHistoryEntry) error
	InsertTotals(ctx context.Context, db bun.IDB, rows []DebtTotal) error

	// GetHistory returns every history row ordered by round id then player id.
	GetHistory(ctx context.Context, db bun.IDB) ([]DebtHistoryEntry, error)
	// GetTotals returns every total ordered by player id.
	GetTotals(ctx context.Context, db bun.IDB) ([]DebtTotal, error)
}
