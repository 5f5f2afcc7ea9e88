package standingsdomain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "plain integer", raw: "7", want: 7},
		{name: "trailing unit", raw: "12 pts", want: 12},
		{name: "em dash", raw: "—", want: 0},
		{name: "empty", raw: "", want: 0},
		{name: "whitespace", raw: "   ", want: 0},
		{name: "leading icon", raw: "★ 45", want: 45},
		{name: "thousands separator", raw: "1.204", want: 1204},
		{name: "minus sign is decoration", raw: "-3", want: 3},
		{name: "leading zeros", raw: "007", want: 7},
		{name: "full-width digits", raw: "１２", want: 12},
		{name: "digits split by text", raw: "1 of 2", want: 12},
		{name: "overflow saturates", raw: "99999999999999999999999", want: math.MaxInt32},
		{name: "max int32", raw: "2147483647", want: math.MaxInt32},
		{name: "just above max int32", raw: "2147483648", want: math.MaxInt32},
		{name: "above max int32 with decoration", raw: "3.000.000.000 pts", want: math.MaxInt32},
		{name: "just below max int32", raw: "2147483646", want: math.MaxInt32 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePoints(tt.raw))
		})
	}
}

func TestParsePoints_NeverNegative(t *testing.T) {
	for _, raw := range []string{"-", "--1", "−5", "-0"} {
		assert.GreaterOrEqual(t, ParsePoints(raw), 0, raw)
	}
}
