package ledgerdb

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests. Setting one of the Fn
// fields overrides the in-memory behavior of that method.
type FakeRepository struct {
	AcquireLedgerLockFn func(ctx context.Context, db bun.IDB) error
	DeleteAllHistoryFn  func(ctx context.Context, db bun.IDB) error
	DeleteAllTotalsFn   func(ctx context.Context, db bun.IDB) error
	InsertHistoryFn     func(ctx context.Context, db bun.IDB, rows []DebtHistoryEntry) error
	InsertTotalsFn      func(ctx context.Context, db bun.IDB, rows []DebtTotal) error
	GetHistoryFn        func(ctx context.Context, db bun.IDB) ([]DebtHistoryEntry, error)
	GetTotalsFn         func(ctx context.Context, db bun.IDB) ([]DebtTotal, error)

	mu      sync.Mutex
	history []DebtHistoryEntry
	totals  []DebtTotal
	trace   []string
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty in-memory ledger.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeRepository) AcquireLedgerLock(ctx context.Context, db bun.IDB) error {
	f.record("AcquireLedgerLock")
	if f.AcquireLedgerLockFn != nil {
		return f.AcquireLedgerLockFn(ctx, db)
	}
	return nil
}

func (f *FakeRepository) DeleteAllHistory(ctx context.Context, db bun.IDB) error {
	f.record("DeleteAllHistory")
	if f.DeleteAllHistoryFn != nil {
		return f.DeleteAllHistoryFn(ctx, db)
	}
	f.mu.Lock()
	f.history = nil
	f.mu.Unlock()
	return nil
}

func (f *FakeRepository) DeleteAllTotals(ctx context.Context, db bun.IDB) error {
	f.record("DeleteAllTotals")
	if f.DeleteAllTotalsFn != nil {
		return f.DeleteAllTotalsFn(ctx, db)
	}
	f.mu.Lock()
	f.totals = nil
	f.mu.Unlock()
	return nil
}

func (f *FakeRepository) InsertHistory(ctx context.Context, db bun.IDB, rows []DebtHistoryEntry) error {
	f.record("InsertHistory")
	if f.InsertHistoryFn != nil {
		return f.InsertHistoryFn(ctx, db, rows)
	}
	f.mu.Lock()
	f.history = append(f.history, rows...)
	f.mu.Unlock()
	return nil
}

func (f *FakeRepository) InsertTotals(ctx context.Context, db bun.IDB, rows []DebtTotal) error {
	f.record("InsertTotals")
	if f.InsertTotalsFn != nil {
		return f.InsertTotalsFn(ctx, db, rows)
	}
	f.mu.Lock()
	f.totals = append(f.totals, rows...)
	f.mu.Unlock()
	return nil
}

func (f *FakeRepository) GetHistory(ctx context.Context, db bun.IDB) ([]DebtHistoryEntry, error) {
	f.record("GetHistory")
	if f.GetHistoryFn != nil {
		return f.GetHistoryFn(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.history)
	slices.SortFunc(out, func(a, b DebtHistoryEntry) int {
		if c := cmp.Compare(a.RoundID, b.RoundID); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out, nil
}

func (f *FakeRepository) GetTotals(ctx context.Context, db bun.IDB) ([]DebtTotal, error) {
	f.record("GetTotals")
	if f.GetTotalsFn != nil {
		return f.GetTotalsFn(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.totals)
	slices.SortFunc(out, func(a, b DebtTotal) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out, nil
}

// Snapshot returns copies of the stored history and totals.
func (f *FakeRepository) Snapshot() ([]DebtHistoryEntry, []DebtTotal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.history), slices.Clone(f.totals)
}

// Restore replaces the stored history and totals, e.g. to emulate a rollback.
func (f *FakeRepository) Restore(history []DebtHistoryEntry, totals []DebtTotal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = slices.Clone(history)
	f.totals = slices.Clone(totals)
}
