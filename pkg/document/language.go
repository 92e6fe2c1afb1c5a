package document

import (
	"strings"
	"unicode"
)

const (
	languageSampleWords = 100
	languageMatchRatio  = 0.1
)

var englishStopWords = map[string]struct{}{
	"the": {}, "and": {}, "is": {}, "in": {}, "to": {}, "of": {}, "a": {}, "that": {},
	"it": {}, "with": {}, "for": {}, "as": {}, "was": {}, "on": {}, "are": {}, "this": {},
	"be": {}, "at": {}, "by": {}, "from": {},
}

// DetectLanguage reports "en" when stop words exceed 10% of the first 100 words.
func DetectLanguage(text string) string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) > languageSampleWords {
		words = words[:languageSampleWords]
	}
	if len(words) == 0 {
		return "unknown"
	}

	matches := 0
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if _, ok := englishStopWords[w]; ok {
			matches++
		}
	}

	if float64(matches)/float64(len(words)) > languageMatchRatio {
		return "en"
	}
	return "unknown"
}
