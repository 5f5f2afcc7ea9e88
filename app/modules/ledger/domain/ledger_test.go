package ledgerdomain

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSeason(faker *gofakeit.Faker) ([]int64, []RoundScore) {
	players := faker.Number(1, 10)
	rounds := faker.Number(0, 6)

	ids := make([]int64, players)
	names := make([]string, players)
	for i := range ids {
		ids[i] = int64(100 + i)
		names[i] = faker.Username()
	}

	var scores []RoundScore
	for r := 1; r <= rounds; r++ {
		for i, id := range ids {
			if faker.Bool() && faker.Bool() {
				continue // player missed the round
			}
			scores = append(scores, RoundScore{
				RoundID:      int64(1000 + r),
				RoundOrdinal: r,
				Score:        Score{PlayerID: id, Username: names[i], Points: faker.Number(0, 8)},
			})
		}
	}
	return ids, scores
}

func TestBuildLedger_Scenario(t *testing.T) {
	scores := []RoundScore{
		{RoundID: 11, RoundOrdinal: 1, Score: Score{PlayerID: 1, Username: "A", Points: 10}},
		{RoundID: 11, RoundOrdinal: 1, Score: Score{PlayerID: 2, Username: "B", Points: 8}},
		{RoundID: 11, RoundOrdinal: 1, Score: Score{PlayerID: 3, Username: "C", Points: 8}},
		{RoundID: 11, RoundOrdinal: 1, Score: Score{PlayerID: 4, Username: "D", Points: 5}},
		{RoundID: 12, RoundOrdinal: 2, Score: Score{PlayerID: 1, Username: "A", Points: 1}},
		{RoundID: 12, RoundOrdinal: 2, Score: Score{PlayerID: 2, Username: "B", Points: 2}},
		{RoundID: 12, RoundOrdinal: 2, Score: Score{PlayerID: 3, Username: "C", Points: 3}},
		{RoundID: 12, RoundOrdinal: 2, Score: Score{PlayerID: 4, Username: "D", Points: 4}},
	}

	got := BuildLedger([]int64{1, 2, 3, 4, 5}, scores)

	want := Ledger{
		History: []HistoryRow{
			{PlayerID: 1, RoundID: 11, RoundOrdinal: 1, Amount: 0},
			{PlayerID: 2, RoundID: 11, RoundOrdinal: 1, Amount: 2},
			{PlayerID: 3, RoundID: 11, RoundOrdinal: 1, Amount: 2},
			{PlayerID: 4, RoundID: 11, RoundOrdinal: 1, Amount: 2},
			{PlayerID: 1, RoundID: 12, RoundOrdinal: 2, Amount: 2},
			{PlayerID: 2, RoundID: 12, RoundOrdinal: 2, Amount: 2},
			{PlayerID: 3, RoundID: 12, RoundOrdinal: 2, Amount: 2},
			{PlayerID: 4, RoundID: 12, RoundOrdinal: 2, Amount: 0},
		},
		Totals: []TotalRow{
			{PlayerID: 1, Amount: 2},
			{PlayerID: 2, Amount: 4},
			{PlayerID: 3, Amount: 4},
			{PlayerID: 4, Amount: 2},
			{PlayerID: 5, Amount: 0},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildLedger() mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, got.Validate())
}

func TestBuildLedger_Idempotent(t *testing.T) {
	faker := gofakeit.New(2024)
	for i := 0; i < 100; i++ {
		ids, scores := randomSeason(faker)

		first := BuildLedger(ids, scores)

		reversed := make([]RoundScore, len(scores))
		for j, s := range scores {
			reversed[len(scores)-1-j] = s
		}
		second := BuildLedger(ids, reversed)

		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("recompute not idempotent (-first +second):\n%s", diff)
		}
	}
}

func TestBuildLedger_SumInvariant(t *testing.T) {
	faker := gofakeit.New(99)
	for i := 0; i < 100; i++ {
		ids, scores := randomSeason(faker)
		ledger := BuildLedger(ids, scores)

		require.NoError(t, ledger.Validate())
		assert.Len(t, ledger.Totals, len(ids))
		assert.Len(t, ledger.History, len(scores))
	}
}

func TestLedger_ValidateDetectsDivergence(t *testing.T) {
	ledger := Ledger{
		History: []HistoryRow{{PlayerID: 1, RoundID: 1, RoundOrdinal: 1, Amount: 2}},
		Totals:  []TotalRow{{PlayerID: 1, Amount: 1}},
	}
	require.ErrorIs(t, ledger.Validate(), ErrTotalsDiverged)

	orphan := Ledger{History: []HistoryRow{{PlayerID: 9, RoundID: 1, RoundOrdinal: 1, Amount: 2}}}
	require.ErrorIs(t, orphan.Validate(), ErrTotalsDiverged)
}
