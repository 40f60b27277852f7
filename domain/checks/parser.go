package checks

import (
	"regexp"
	"strings"
)

var (
	separatorPattern = regexp.MustCompile(`[\n,;]+`)

	// E.164: optional '+', no leading zero, at most 15 digits.
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// ParseNumbers splits raw input on newlines, commas and semicolons, trims each
// token and drops empty ones. Input order is kept; duplicates are not removed.
func ParseNumbers(raw string) []string {
	parts := separatorPattern.Split(raw, -1)
	numbers := make([]string, 0, len(parts))

	for _, part := range parts {
		if token := strings.TrimSpace(part); token != "" {
			numbers = append(numbers, token)
		}
	}

	return numbers
}

func IsValidPhoneNumber(number string) bool {
	return phonePattern.MatchString(number)
}
