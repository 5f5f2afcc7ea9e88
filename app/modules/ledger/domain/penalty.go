package ledgerdomain

import (
	"cmp"
	"slices"
)

// Penalty is the debt a player takes on for one round.
type Penalty int

const (
	PenaltyNone   Penalty = 0
	PenaltyShared Penalty = 1
	PenaltyFull   Penalty = 2
)

// Score is one player's points in one round.
type Score struct {
	PlayerID int64
	Username string
	Points   int
}

// Assessment is the penalty assigned to a player for a round.
type Assessment struct {
	PlayerID int64
	Username string
	Points   int
	Penalty  Penalty
}

// rankAscending orders scores from worst to best. Equal points fall back to
// username so the worst and second worst slots are reproducible.
func rankAscending(scores []Score) []Score {
	sorted := slices.Clone(scores)
	slices.SortFunc(sorted, func(a, b Score) int {
		if c := cmp.Compare(a.Points, b.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Username, b.Username); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return sorted
}

// AssessRound assigns a penalty to every score of one round.
//
// The two lowest scores pay PenaltyFull. The third lowest pays PenaltyFull
// unless other players share its value: if the tie stays inside the bottom
// three everyone tied pays PenaltyFull, and if it reaches past the bottom
// three every tied player outside the two worst slots pays PenaltyShared.
// Rounds with fewer than three players penalize only the slots that exist.
//
// The result is ordered worst to best.
func AssessRound(scores []Score) []Assessment {
	sorted := rankAscending(scores)
	out := make([]Assessment, len(sorted))
	for i, s := range sorted {
		out[i] = Assessment{PlayerID: s.PlayerID, Username: s.Username, Points: s.Points, Penalty: PenaltyNone}
	}

	for i := 0; i < 2 && i < len(out); i++ {
		out[i].Penalty = PenaltyFull
	}
	if len(out) < 3 {
		return out
	}

	threshold := out[2].Points
	tied := 0
	beyondBottom := false
	for i, a := range out {
		if a.Points != threshold {
			continue
		}
		tied++
		if i > 2 {
			beyondBottom = true
		}
	}

	switch {
	case tied == 1:
		out[2].Penalty = PenaltyFull
	case !beyondBottom:
		for i := range out {
			if out[i].Points == threshold {
				out[i].Penalty = PenaltyFull
			}
		}
	default:
		for i := 2; i < len(out); i++ {
			if out[i].Points == threshold {
				out[i].Penalty = PenaltyShared
			}
		}
	}
	return out
}
