// pkg/transform/coerce.go
package transform

import (
	"strconv"
	"strings"
)

// Present normalizes a raw value: whitespace is trimmed, and a value that is
// empty after trimming is reported as "". All downstream absence checks go
// through this single normalization.
func Present(value string) string {
	return strings.TrimSpace(value)
}

// ToInteger parses a raw value as a float and rounds half-up to the nearest
// integer. Unparsable or blank values yield nil, never 0 — zero and
// "unknown" must stay distinguishable.
func ToInteger(value string) interface{} {
	value = Present(value)
	if value == "" {
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

// ToBoolean interprets the usual textual forms first, then falls back to a
// numeric parse with >0 meaning true. Anything else yields nil.
func ToBoolean(value string) interface{} {
	value = Present(value)
	if value == "" {
		return nil
	}

	switch strings.ToLower(value) {
	case "true", "t", "yes", "y":
		return true
	case "false", "f", "no", "n":
		return false
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f > 0
	}

	return nil
}
