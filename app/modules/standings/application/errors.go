package standingsservice

import "errors"

var (
	// ErrNegativePoints is returned when a caller records a negative score.
	ErrNegativePoints = errors.New("points must be non-negative")
	// ErrInvalidRound is returned when points are recorded without a round id.
	ErrInvalidRound = errors.New("round id is required")
)
