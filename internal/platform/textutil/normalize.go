package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold trims and lowercases a value without touching diacritics.
func Fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// FoldStripped additionally removes diacritic marks, so "José" and "jose"
// fold to the same form.
func FoldStripped(value string) string {
	folded := Fold(value)
	stripped, _, err := transform.String(diacriticStripper, folded)
	if err != nil {
		return folded
	}
	return stripped
}
