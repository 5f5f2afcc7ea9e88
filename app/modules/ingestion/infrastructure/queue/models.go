package ingestionqueue

// IngestFeedJob ingests the feed file at Path.
type IngestFeedJob struct {
	Path string `json:"path"`
}

// Kind returns the job type identifier for River
func (IngestFeedJob) Kind() string { return "ingest_feed" }

// RecomputeDebtsJob rebuilds the debt ledger.
type RecomputeDebtsJob struct{}

// Kind returns the job type identifier for River
func (RecomputeDebtsJob) Kind() string { return "recompute_debts" }
