package document

import (
	"context"
	"regexp"
	"strings"

	"ai-tutoring-be/pkg/utils"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

const maxSummarySentences = 3

// Summarizer produces a short summary of extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ExtractiveSummary picks the first, the longest and the last sentence.
// It is deterministic and needs no model.
func ExtractiveSummary(text string) string {
	var sentences []string
	for _, s := range sentenceEnd.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return ""
	}

	picked := []int{0}

	longest := 0
	for i, s := range sentences {
		if utils.CharLen(s) > utils.CharLen(sentences[longest]) {
			longest = i
		}
	}
	if longest != 0 {
		picked = append(picked, longest)
	}

	last := len(sentences) - 1
	if last != 0 && last != longest && len(picked) < maxSummarySentences {
		picked = append(picked, last)
	}

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, ". ") + "."
}
