package textutil

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	folder = cases.Fold()
	titler = cases.Title(language.English)
)

// MatchChoice resolves operator input against an enumerated list. Input may be
// the 1-based position, the full label in any case, or an unambiguous prefix.
// The canonical label from choices is returned.
func MatchChoice(input string, choices []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return "", false
	}

	needle := folder.String(input)
	var prefixMatch string
	matches := 0
	for _, choice := range choices {
		folded := folder.String(choice)
		if folded == needle {
			return choice, true
		}
		if strings.HasPrefix(folded, needle) {
			prefixMatch = choice
			matches++
		}
	}
	if matches == 1 {
		return prefixMatch, true
	}
	return "", false
}

// Title capitalizes each word of value using English casing rules.
func Title(value string) string {
	return titler.String(strings.TrimSpace(value))
}
