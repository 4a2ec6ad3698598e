package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "well-formed uppercase", code: "AR-9K2M4P", want: true},
		{name: "lowercase is canonicalized", code: "ar-9k2m4p", want: true},
		{name: "mixed case", code: "Bx-1a2B3c", want: true},
		{name: "surrounding whitespace", code: "  AR-9K2M4P  ", want: true},
		{name: "five trailing characters", code: "AR-9K2M4", want: false},
		{name: "seven trailing characters", code: "AR-9K2M4PX", want: false},
		{name: "missing hyphen", code: "AR9K2M4P", want: false},
		{name: "digits in prefix", code: "1R-9K2M4P", want: false},
		{name: "one-letter prefix", code: "A-9K2M4P", want: false},
		{name: "empty string", code: "", want: false},
		{name: "embedded space", code: "AR-9K2 4P", want: false},
		{name: "unicode letters", code: "ÁR-9K2M4P", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.code))
		})
	}
}

func TestChances(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{count: 0, want: 0},
		{count: 1, want: 1},
		{count: 2, want: 1},
		{count: 3, want: 10},
		{count: 9, want: 10},
		{count: 10, want: 100},
		{count: 11, want: 100},
		{count: 250, want: 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Chances(tt.count), "count %d", tt.count)
	}
}

func TestChancesMonotonic(t *testing.T) {
	prev := Chances(0)
	for c := 1; c <= 50; c++ {
		cur := Chances(c)
		assert.GreaterOrEqual(t, cur, prev, "tier must never decrease as count grows (count %d)", c)
		prev = cur
	}
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "AR-9K2M4P", Canonicalize("ar-9k2m4p"))
	assert.Equal(t, "AR-9K2M4P", Canonicalize(" AR-9K2M4P\n"))
}
