package post

import (
	"context"
	"errors"
	"strings"
)

// Agent drafts review text from already-collected fields. Optional: the bot
// runs without one when no LLM is configured.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// SuggestReview generates a review draft for the session's movie.
func (a *Agent) SuggestReview(ctx context.Context, title string, labels []string, rating string) (string, error) {
	raw, err := a.llm.Complete(ctx, BuildReviewPrompt(title, labels, rating))
	if err != nil {
		return "", err
	}
	draft := strings.TrimSpace(raw)
	if draft == "" {
		return "", errors.New("model returned an empty draft")
	}
	return draft, nil
}
