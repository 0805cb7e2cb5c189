// Package textutil holds small text helpers shared by the mail and
// notification layers.
package textutil

import (
	"unicode/utf8"
)

// Truncate limits text to max runes, appending an ellipsis when anything
// was cut. A non-positive max returns the text unchanged.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}

// SanitizeUTF8 drops invalid UTF-8 sequences so decoded mail bytes are safe
// to log and render.
func SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}
	return string(result)
}
