package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseLooseJSON parses JSON that may arrive in the tolerated legacy shapes
// rule authors produced over time:
// - Pure JSON
// - JSON wrapped in markdown code blocks (```json ... ```)
// - JSON with surrounding text
// - JSON with trailing commas, unquoted keys, or single quotes
func ParseLooseJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	// Try direct parsing first (most common case)
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Try to extract JSON from markdown code blocks
	if extracted := extractFromMarkdown(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to find a JSON object/array in surrounding text
	if extracted := extractJSONFromText(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	// Try to clean and fix common authoring mistakes
	if cleaned := cleanAndFixJSON(input); cleaned != "" {
		if err := json.Unmarshal([]byte(cleaned), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// ParseStringList parses a stored list field that may be a JSON string
// array, a JSON array of mixed values, or a bare comma-separated string
// (both ASCII and fullwidth separators). Returns nil when nothing usable
// can be recovered.
func ParseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := ParseLooseJSON(raw, &list); err == nil {
		return trimNonEmpty(list)
	}

	var mixed []interface{}
	if err := ParseLooseJSON(raw, &mixed); err == nil {
		out := make([]string, 0, len(mixed))
		for _, v := range mixed {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return trimNonEmpty(out)
		}
	}

	// Looks list-like but unparseable as JSON: give up so the caller can
	// apply its own fallback instead of treating brackets as content.
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		return nil
	}

	// Bare comma-separated string
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == ';' || r == '；'
	})
	return trimNonEmpty(parts)
}

// ParseStringListMap parses a stored synonyms field into canonical term →
// alternate surface forms. Values may be a list, a single string, or a
// comma-separated string.
func ParseStringListMap(raw string) (map[string][]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var loose map[string]interface{}
	if err := ParseLooseJSON(raw, &loose); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(loose))
	for key, v := range loose {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		switch val := v.(type) {
		case string:
			out[key] = ParseStringList(val)
		case []interface{}:
			forms := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					forms = append(forms, s)
				}
			}
			out[key] = trimNonEmpty(forms)
		}
	}
	return out, nil
}

func trimNonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractFromMarkdown extracts JSON from markdown code blocks
// Supports: ```json {...} ```, ```{...}```, or ```\n{...}\n```
func extractFromMarkdown(input string) string {
	// Pattern 1: ```json ... ```
	re1 := regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	if matches := re1.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// Pattern 2: ``` ... ```
	re2 := regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	if matches := re2.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds a JSON object or array in surrounding text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)

	// Remove BOM if present
	s = strings.TrimPrefix(s, "\ufeff")

	// Remove trailing commas before closing braces/brackets
	re1 := regexp.MustCompile(`,\s*([}\]])`)
	s = re1.ReplaceAllString(s, "$1")

	// Fix missing quotes around keys
	// Match: {word: "value"} -> {"word": "value"}
	re2 := regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	s = re2.ReplaceAllString(s, `$1"$2"$3`)

	// Fix single quotes to double quotes (outside of strings)
	s = fixSingleQuotes(s)

	// Remove control characters
	s = removeControlCharacters(s)

	return s
}

// fixSingleQuotes converts single quotes to double quotes for JSON compatibility
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false

	for i, ch := range input {
		if escape {
			result.WriteRune(ch)
			escape = false
			continue
		}

		if ch == '\\' {
			result.WriteRune(ch)
			escape = true
			continue
		}

		if ch == '"' {
			inDoubleQuote = !inDoubleQuote
			result.WriteRune(ch)
			continue
		}

		// Only replace single quotes outside of double-quoted strings
		if ch == '\'' && !inDoubleQuote {
			prevChar := rune(0)
			if i > 0 {
				prevChar = rune(input[i-1])
			}
			if i == 0 || prevChar == ':' || prevChar == ',' || prevChar == '[' || prevChar == '{' {
				result.WriteRune('"')
				continue
			}
		}

		result.WriteRune(ch)
	}

	return result.String()
}

// removeControlCharacters removes non-printable control characters
func removeControlCharacters(input string) string {
	return regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`).ReplaceAllString(input, "")
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ValidateJSON checks if a string is valid JSON
func ValidateJSON(input string) bool {
	var js interface{}
	return json.Unmarshal([]byte(input), &js) == nil
}

// RepairJSON returns the first syntactically valid JSON document
// recoverable from input, applying the same extraction and cleanup passes
// as ParseLooseJSON. Callers that need token-order-preserving decoding use
// this to get well-formed text first.
func RepairJSON(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if ValidateJSON(input) {
		return input, true
	}
	if extracted := extractFromMarkdown(input); extracted != "" && ValidateJSON(extracted) {
		return extracted, true
	}
	if extracted := extractJSONFromText(input); extracted != "" && ValidateJSON(extracted) {
		return extracted, true
	}
	if cleaned := cleanAndFixJSON(input); cleaned != "" && ValidateJSON(cleaned) {
		return cleaned, true
	}
	return "", false
}
