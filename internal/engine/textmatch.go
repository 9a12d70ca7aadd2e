package engine

import "strings"

// Normalize lowercases and trims a string for matching. The matching unit
// across the engine is substring containment over the normalized text, not
// word-segmented tokens: the question language has no whitespace-delimited
// tokenization, so substrings are the only reliable primitive.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Contains reports whether needle occurs in haystack after normalization.
// No stemming, no fuzzy matching; exact substring containment keeps the
// matcher fully predictable.
func Contains(haystack, needle string) bool {
	needle = Normalize(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), needle)
}
