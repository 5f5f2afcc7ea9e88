package standingsdb

import (
	"context"
	"sort"
	"sync"

	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type entryKey struct {
	playerID int64
	roundID  int64
}

// FakeRepository is an in-memory Repository for tests. It joins against a
// fake roster to fill usernames and ordinals. Setting an Fn field overrides
// the in-memory behavior of that method.
type FakeRepository struct {
	UpsertPointsFn      func(ctx context.Context, db bun.IDB, entries []PointsEntry) error
	GetPointsForRoundFn func(ctx context.Context, db bun.IDB, roundID int64) ([]RoundPoints, error)
	ListAllPointsFn     func(ctx context.Context, db bun.IDB) ([]RoundPoints, error)

	roster  *rosterdb.FakeRepository
	mu      sync.Mutex
	entries map[entryKey]int
	trace   []string
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty points store joined to roster.
func NewFakeRepository(roster *rosterdb.FakeRepository) *FakeRepository {
	return &FakeRepository{
		roster:  roster,
		entries: map[entryKey]int{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	f.trace = append(f.trace, step)
	f.mu.Unlock()
}

func (f *FakeRepository) UpsertPoints(ctx context.Context, db bun.IDB, entries []PointsEntry) error {
	f.record("UpsertPoints")
	if f.UpsertPointsFn != nil {
		return f.UpsertPointsFn(ctx, db, entries)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		f.entries[entryKey{e.PlayerID, e.RoundID}] = e.Points
	}
	return nil
}

func (f *FakeRepository) GetPointsForRound(ctx context.Context, db bun.IDB, roundID int64) ([]RoundPoints, error) {
	f.record("GetPointsForRound")
	if f.GetPointsForRoundFn != nil {
		return f.GetPointsForRoundFn(ctx, db, roundID)
	}
	var out []RoundPoints
	for _, rp := range f.joined() {
		if rp.RoundID == roundID {
			out = append(out, rp)
		}
	}
	return out, nil
}

func (f *FakeRepository) ListAllPoints(ctx context.Context, db bun.IDB) ([]RoundPoints, error) {
	f.record("ListAllPoints")
	if f.ListAllPointsFn != nil {
		return f.ListAllPointsFn(ctx, db)
	}
	return f.joined(), nil
}

// joined emulates the players/rounds join ordered by ordinal then username.
func (f *FakeRepository) joined() []RoundPoints {
	players, rounds := f.roster.Snapshot()
	usernames := make(map[int64]string, len(players))
	for _, p := range players {
		usernames[p.ID] = p.Username
	}
	ordinals := make(map[int64]int, len(rounds))
	for _, r := range rounds {
		ordinals[r.ID] = r.Ordinal
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RoundPoints, 0, len(f.entries))
	for k, points := range f.entries {
		username, okP := usernames[k.playerID]
		ordinal, okR := ordinals[k.roundID]
		if !okP || !okR {
			continue
		}
		out = append(out, RoundPoints{
			PlayerID:     k.playerID,
			RoundID:      k.roundID,
			RoundOrdinal: ordinal,
			Username:     username,
			Points:       points,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundOrdinal != out[j].RoundOrdinal {
			return out[i].RoundOrdinal < out[j].RoundOrdinal
		}
		return out[i].Username < out[j].Username
	})
	return out
}

// Snapshot returns a copy of the stored points keyed by (player, round).
func (f *FakeRepository) Snapshot() map[[2]int64]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[[2]int64]int, len(f.entries))
	for k, v := range f.entries {
		out[[2]int64{k.playerID, k.roundID}] = v
	}
	return out
}

// Restore replaces the stored points, e.g. to emulate a rollback.
func (f *FakeRepository) Restore(snapshot map[[2]int64]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[entryKey]int, len(snapshot))
	for k, v := range snapshot {
		f.entries[entryKey{k[0], k[1]}] = v
	}
}
