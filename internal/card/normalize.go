package card

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName collapses internal whitespace runs to single spaces and
// trims the ends. Empty input yields the empty string.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slugify lowercases s, replaces every run of characters outside [a-z0-9]
// with a single hyphen, and strips leading/trailing hyphens. Idempotent:
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
