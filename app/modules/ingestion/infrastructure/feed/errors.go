package feed

import "errors"

var (
	errEmptySheet       = errors.New("table is empty")
	errNoUsernameColumn = errors.New("no username column found")
	errNoPointsColumn   = errors.New("no points column found")

	// ErrEmptyFeed is returned when a file holds neither roster nor rounds.
	ErrEmptyFeed = errors.New("feed has no roster and no rounds")
)
