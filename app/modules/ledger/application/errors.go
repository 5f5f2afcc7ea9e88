package ledgerservice

import "errors"

var (
	// ErrRecomputeFailed is the single signal callers get when a recompute
	// rolled back. The storage cause is logged, not returned.
	ErrRecomputeFailed = errors.New("debt recompute failed")

	// ErrNoData is returned by exports when there is nothing to export.
	ErrNoData = errors.New("ledger has no players")
)
