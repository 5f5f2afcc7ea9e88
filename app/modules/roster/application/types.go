package rosterservice

// RosterFailure records one roster entry that could not be stored.
type RosterFailure struct {
	Username string
	Reason   string
}

// RosterResult summarizes a best-effort roster ingestion.
type RosterResult struct {
	Upserted int
	Failures []RosterFailure
}
