package promo

import (
	"regexp"
	"strings"
)

// codePattern is the canonical shape of a campaign code: two uppercase
// letters, a hyphen, six uppercase alphanumerics (e.g. AR-9K2M4P).
var codePattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z0-9]{6}$`)

// Canonicalize trims whitespace and uppercases a submitted code. Codes are
// case-insensitive on input but stored and compared in uppercase.
func Canonicalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate reports whether a submitted string is a well-formed code. It must
// be consulted before any store lookup so malformed input never reaches the
// database and gets its own rejection message, distinct from "not found".
func Validate(code string) bool {
	return codePattern.MatchString(Canonicalize(code))
}

// Chances maps a participant's total redeemed-code count to their chance
// tier for the drawing. The tier is a step function recomputed from the
// running total on every successful redemption, never incremented.
func Chances(codesCount int) int {
	switch {
	case codesCount >= 10:
		return 100
	case codesCount >= 3:
		return 10
	case codesCount >= 1:
		return 1
	default:
		return 0
	}
}
