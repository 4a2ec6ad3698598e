package phone

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// typedPhonePattern matches text that looks like a hand-typed phone number.
// Registration only accepts numbers arriving through the verified
// contact-share mechanism, so phone-shaped free text gets a warning instead.
var typedPhonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{7,17}[0-9]$`)

// digitsOnly strips everything except digits.
var digitsOnly = regexp.MustCompile(`[^0-9]`)

// Normalize parses a contact-share phone number and returns it in E.164
// format. Contact payloads sometimes omit the leading plus, so one is added
// before parsing. The number must carry a valid country code.
func Normalize(raw string) (string, error) {
	cleaned := digitsOnly.ReplaceAllString(raw, "")
	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	num, err := phonenumbers.Parse("+"+cleaned, "")
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// LooksTyped reports whether free text resembles a manually entered phone
// number. Deliberately loose: it exists to warn, not to validate.
func LooksTyped(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !typedPhonePattern.MatchString(trimmed) {
		return false
	}
	return len(digitsOnly.ReplaceAllString(trimmed, "")) >= 9
}
