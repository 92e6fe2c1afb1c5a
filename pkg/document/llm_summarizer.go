package document

import (
	"context"
	"errors"
	"fmt"

	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/utils"
)

// summaryInputLimit keeps prompts inside small local model contexts.
const summaryInputLimit = 8000

const summaryPrompt = `Summarize the following study material in at most three sentences.
Write plain prose without bullet points or headings.

%s`

// LLMSummarizer asks a chat model for an abstractive summary.
type LLMSummarizer struct {
	provider llm.LLMProvider
}

func NewLLMSummarizer(provider llm.LLMProvider) *LLMSummarizer {
	return &LLMSummarizer{provider: provider}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.provider == nil {
		return "", errors.New("no llm provider configured")
	}
	prompt := fmt.Sprintf(summaryPrompt, utils.Truncate(text, summaryInputLimit))
	return s.provider.Generate(ctx, prompt, llm.WithTemperature(0.2), llm.WithMaxTokens(200))
}
