package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most maxRunes runes. It never splits a multi-byte character.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}

// Words splits on any whitespace and drops empty tokens.
func Words(text string) []string {
	return strings.Fields(text)
}

func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CharLen is the character length used for chunk budgeting.
func CharLen(s string) int {
	return utf8.RuneCountInString(s)
}
