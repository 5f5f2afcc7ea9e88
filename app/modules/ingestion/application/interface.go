package ingestionservice

import (
	"context"

	ledgerdomain "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/domain"
	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
	"github.com/uptrace/bun"
)

// Service coordinates roster, standings and ledger writes.
type Service interface {
	// IngestRound stores one round and recomputes the ledger in a single
	// transaction. Any failure rolls everything back and returns
	// ErrIngestionFailed.
	IngestRound(ctx context.Context, ordinal int, label string, entries []sharedtypes.RawPoints) (RoundResult, error)

	// AppendRound ingests entries as the round after the highest stored one.
	AppendRound(ctx context.Context, label string, entries []sharedtypes.RawPoints) (RoundResult, error)

	// IngestRoster upserts every roster entry independently.
	IngestRoster(ctx context.Context, entries []sharedtypes.RosterEntry) (RosterResult, error)

	// IngestFeed ingests the roster and then every round of the feed with
	// ordinals 1..n in feed order. It stops at the first failed round.
	IngestFeed(ctx context.Context, feed sharedtypes.Feed) (FeedResult, error)
}

// LedgerLocker serializes ledger writers. The ledger repository satisfies it.
type LedgerLocker interface {
	AcquireLedgerLock(ctx context.Context, db bun.IDB) error
}

// Recomputer rebuilds the debt ledger inside a caller's transaction.
type Recomputer interface {
	RecomputeInTx(ctx context.Context, db bun.IDB) (ledgerdomain.Ledger, error)
}
