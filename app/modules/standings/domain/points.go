package standingsdomain

import "math"

// maxPoints caps absurdly long digit runs instead of overflowing.
const maxPoints = math.MaxInt32

// ParsePoints normalizes a scraped points token into a non-negative score.
//
// Every non-digit is dropped ("12 pts" -> 12, "1.204" -> 1204). Full-width
// numerals count as digits. Input with no digits at all yields 0; the function
// never fails.
func ParsePoints(raw string) int {
	value := 0
	for _, r := range raw {
		d, ok := digitValue(r)
		if !ok {
			continue
		}
		if value > (maxPoints-d)/10 {
			return maxPoints
		}
		value = value*10 + d
	}
	return value
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '０' && r <= '９':
		return int(r - '０'), true
	default:
		return 0, false
	}
}
