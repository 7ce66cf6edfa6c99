// Package normalizers provides field normalization for intake matching.
package normalizers

import (
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// PartNum keeps only letters, digits, and dashes so manifest part numbers
// match the catalog regardless of spacing or stray punctuation.
func PartNum(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SerialNum trims surrounding whitespace from a scanned serial number.
func SerialNum(s string) string {
	return strings.TrimSpace(s)
}

// TrackingNum trims and uppercases a scanned tracking number.
func TrackingNum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
