package post

import "context"

// LLMClient abstracts the model client so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the base configuration handed to concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// Prompt is the message pair sent to the model.
type Prompt struct {
	System string
	User   string
}
