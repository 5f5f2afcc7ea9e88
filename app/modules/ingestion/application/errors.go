package ingestionservice

import "errors"

// ErrIngestionFailed is the single signal callers get when a round could not
// be ingested. Nothing from the failed unit of work was committed.
var ErrIngestionFailed = errors.New("ingestion failed")
