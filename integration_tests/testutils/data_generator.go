package testutils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	sharedtypes "github.com/Black-And-White-Club/league-ledger/app/shared/types"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the generator seed so failures can be replayed.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GenerateRoster returns n players with distinct usernames.
func (g *TestDataGenerator) GenerateRoster(n int) []sharedtypes.RosterEntry {
	out := make([]sharedtypes.RosterEntry, n)
	for i := range out {
		out[i] = sharedtypes.RosterEntry{
			Username:    fmt.Sprintf("%s%02d", g.faker.Username(), i),
			DisplayName: g.faker.FirstName(),
			AvatarURL:   g.faker.URL(),
		}
	}
	return out
}

// GenerateRound returns one raw points entry per roster player in random
// order, decorated the way the scraped feed reports them.
func (g *TestDataGenerator) GenerateRound(roster []sharedtypes.RosterEntry) []sharedtypes.RawPoints {
	out := make([]sharedtypes.RawPoints, len(roster))
	for i, p := range roster {
		points := strconv.Itoa(g.faker.Number(0, 40))
		if g.faker.Bool() {
			points += " pts"
		}
		out[i] = sharedtypes.RawPoints{Username: p.Username, Points: points}
	}
	g.faker.ShuffleAnySlice(out)
	return out
}
