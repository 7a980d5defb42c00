package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrMalformedJSON is returned when a reply cannot be turned into JSON even after repair.
var ErrMalformedJSON = errors.New("model reply is not valid JSON")

var (
	fenceOpen     = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose    = regexp.MustCompile("\\s*```$")
	firstObject   = regexp.MustCompile(`(?s)\{.*\}`)
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// cleanJSONString removes markdown code fences if present (e.g. ```json ... ```).
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = fenceOpen.ReplaceAllString(input, "")
	input = fenceClose.ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}

// repairJSON pulls the outermost {...} out of surrounding prose and drops
// trailing commas before a closing brace or bracket.
func repairJSON(input string) string {
	candidate := input
	if m := firstObject.FindString(input); m != "" {
		candidate = m
	}
	return trailingComma.ReplaceAllString(candidate, "$1")
}

// ExtractJSON returns the JSON document contained in a model reply. The
// reply is used as-is after fence stripping when it is valid; otherwise one
// repair pass is attempted.
func ExtractJSON(raw string) ([]byte, error) {
	stripped := cleanJSONString(raw)
	if json.Valid([]byte(stripped)) {
		return []byte(stripped), nil
	}

	repaired := repairJSON(stripped)
	if json.Valid([]byte(repaired)) {
		return []byte(repaired), nil
	}

	return nil, fmt.Errorf("%w (raw, first 200 chars: %s)", ErrMalformedJSON, truncate(raw, 200))
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
