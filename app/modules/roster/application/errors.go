package rosterservice

import "errors"

// Domain errors for the roster service.
var (
	// ErrInvalidOrdinal indicates a round ordinal below 1.
	ErrInvalidOrdinal = errors.New("round ordinal must be >= 1")

	// ErrInvalidUsername indicates a blank username in a roster entry.
	ErrInvalidUsername = errors.New("username must not be blank")

	// ErrRoundNotFound indicates no round is stored under the ordinal.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRosterIncomplete indicates at least one roster entry failed to upsert.
	// The entries that succeeded are kept.
	ErrRosterIncomplete = errors.New("roster ingestion incomplete")
)
