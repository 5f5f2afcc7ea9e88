package rosterdb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested player or round does not exist.
	ErrNotFound = errors.New("not found")
)
