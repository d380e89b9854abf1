package post

import (
	"context"
	"strings"
)

// MockLLM is a placeholder client for local runs and tests; it never calls an
// external model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var sb strings.Builder
	sb.WriteString("A placeholder review generated without a model.\n\n")
	sb.WriteString("Prompt was:\n")
	sb.WriteString(prompt.User)
	return sb.String(), nil
}
