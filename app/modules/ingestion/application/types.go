package ingestionservice

import rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"

// RosterResult reports a best-effort roster ingestion.
type RosterResult = rosterservice.RosterResult

// RoundResult summarizes one committed round ingestion.
type RoundResult struct {
	Ordinal     int
	RoundID     int64
	Recorded    int
	Skipped     []string
	HistoryRows int
	Players     int
}

// FeedResult summarizes a feed ingestion. Rounds holds the rounds committed
// before the first failure, if any.
type FeedResult struct {
	Roster RosterResult
	Rounds []RoundResult
}
