package standingsservice

// RecordResult summarizes a bulk points write for one round.
type RecordResult struct {
	Recorded int
	Skipped  []string
}
