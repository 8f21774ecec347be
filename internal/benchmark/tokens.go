/*
PURPOSE:
  Token estimation used when the gateway does not report usage.
*/

package benchmark

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CountTokens estimates the token count of text. Roughly four characters per
// token for English prose, but never fewer tokens than whitespace-separated words.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	byChars := (utf8.RuneCountInString(text) + 3) / 4
	words := len(strings.Fields(text))
	if words > byChars {
		return words
	}
	return byChars
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
