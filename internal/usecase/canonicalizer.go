package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var nonNameCharsRegex = regexp.MustCompile(`[^\p{L}\p{N}\p{Z}\s]+`)

// Canonicalize normalizes an ingredient or product name for matching:
// lowercase, punctuation stripped, whitespace trimmed and collapsed to single spaces.
// Canonicalize(Canonicalize(s)) == Canonicalize(s) for every s.
func Canonicalize(raw string) string {
	if raw == "" {
		return ""
	}
	result := strings.ToLower(raw)
	result = nonNameCharsRegex.ReplaceAllString(result, "")
	return strings.Join(strings.Fields(result), " ")
}
