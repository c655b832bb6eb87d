package domain

import "strings"

// NormalizeSearchText prepares free text for case-insensitive matching.
// Examples: "  Jazz Night " -> "jazz night"
func NormalizeSearchText(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
