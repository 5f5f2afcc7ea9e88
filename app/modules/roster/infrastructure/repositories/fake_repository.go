package rosterdb

import (
	"context"
	"sort"
	"sync"

	"github.com/uptrace/bun"
)

// FakeRepository is an in-memory Repository for tests. Setting one of the Fn
// fields overrides the in-memory behavior of that method.
type FakeRepository struct {
	UpsertPlayerFn          func(ctx context.Context, db bun.IDB, player *Player) error
	UpsertRoundFn           func(ctx context.Context, db bun.IDB, round *Round) error
	GetPlayersByUsernamesFn func(ctx context.Context, db bun.IDB, usernames []string) ([]Player, error)
	GetRoundByOrdinalFn     func(ctx context.Context, db bun.IDB, ordinal int) (*Round, error)
	ListPlayersFn           func(ctx context.Context, db bun.IDB) ([]Player, error)
	ListRoundsFn            func(ctx context.Context, db bun.IDB) ([]Round, error)
	MaxOrdinalFn            func(ctx context.Context, db bun.IDB) (int, error)

	mu      sync.Mutex
	players map[string]Player
	rounds  map[int]Round
	nextID  int64
	trace   []string
}

var _ Repository = (*FakeRepository)(nil)

// NewFakeRepository returns an empty in-memory roster.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		players: map[string]Player{},
		rounds:  map[int]Round{},
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

func (f *FakeRepository) UpsertPlayer(ctx context.Context, db bun.IDB, player *Player) error {
	f.record("UpsertPlayer")
	if f.UpsertPlayerFn != nil {
		return f.UpsertPlayerFn(ctx, db, player)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.players[player.Username]
	if !ok {
		f.nextID++
		existing = Player{ID: f.nextID, Username: player.Username}
	}
	existing.DisplayName = player.DisplayName
	existing.AvatarURL = player.AvatarURL
	f.players[player.Username] = existing
	*player = existing
	return nil
}

func (f *FakeRepository) UpsertRound(ctx context.Context, db bun.IDB, round *Round) error {
	f.record("UpsertRound")
	if f.UpsertRoundFn != nil {
		return f.UpsertRoundFn(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.rounds[round.Ordinal]
	if !ok {
		f.nextID++
		existing = Round{ID: f.nextID, Ordinal: round.Ordinal, Label: round.Label}
	}
	if !round.DefaultLabel {
		existing.Label = round.Label
	}
	f.rounds[round.Ordinal] = existing
	*round = existing
	return nil
}

func (f *FakeRepository) GetPlayersByUsernames(ctx context.Context, db bun.IDB, usernames []string) ([]Player, error) {
	f.record("GetPlayersByUsernames")
	if f.GetPlayersByUsernamesFn != nil {
		return f.GetPlayersByUsernamesFn(ctx, db, usernames)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Player
	seen := map[string]bool{}
	for _, u := range usernames {
		if p, ok := f.players[u]; ok && !seen[u] {
			seen[u] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *FakeRepository) GetRoundByOrdinal(ctx context.Context, db bun.IDB, ordinal int) (*Round, error) {
	f.record("GetRoundByOrdinal")
	if f.GetRoundByOrdinalFn != nil {
		return f.GetRoundByOrdinalFn(ctx, db, ordinal)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[ordinal]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (f *FakeRepository) ListPlayers(ctx context.Context, db bun.IDB) ([]Player, error) {
	f.record("ListPlayers")
	if f.ListPlayersFn != nil {
		return f.ListPlayersFn(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *FakeRepository) ListRounds(ctx context.Context, db bun.IDB) ([]Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFn != nil {
		return f.ListRoundsFn(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Round, 0, len(f.rounds))
	for _, r := range f.rounds {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (f *FakeRepository) MaxOrdinal(ctx context.Context, db bun.IDB) (int, error) {
	f.record("MaxOrdinal")
	if f.MaxOrdinalFn != nil {
		return f.MaxOrdinalFn(ctx, db)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	maxOrdinal := 0
	for o := range f.rounds {
		if o > maxOrdinal {
			maxOrdinal = o
		}
	}
	return maxOrdinal, nil
}

// Snapshot returns a copy of the stored players and rounds.
func (f *FakeRepository) Snapshot() (map[string]Player, map[int]Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	players := make(map[string]Player, len(f.players))
	for k, v := range f.players {
		players[k] = v
	}
	rounds := make(map[int]Round, len(f.rounds))
	for k, v := range f.rounds {
		rounds[k] = v
	}
	return players, rounds
}

// Restore replaces the stored players and rounds, e.g. to emulate a rollback.
func (f *FakeRepository) Restore(players map[string]Player, rounds map[int]Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = players
	f.rounds = rounds
}
