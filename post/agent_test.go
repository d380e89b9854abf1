package post

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLLM struct {
	out string
	err error
}

func (f fixedLLM) Complete(context.Context, Prompt) (string, error) {
	return f.out, f.err
}

func TestAgentRequiresClient(t *testing.T) {
	_, err := NewAgent(nil)
	assert.Error(t, err)
}

func TestSuggestReview(t *testing.T) {
	agent, err := NewAgent(MockLLM{})
	require.NoError(t, err)

	draft, err := agent.SuggestReview(context.Background(), "Inception", []string{"scifi"}, "9")
	require.NoError(t, err)
	assert.NotEmpty(t, draft)
	assert.Contains(t, draft, "Inception", "prompt carries the title through the mock")
}

func TestSuggestReviewTrimsAndRejectsEmpty(t *testing.T) {
	agent, err := NewAgent(fixedLLM{out: "  \n\t "})
	require.NoError(t, err)
	_, err = agent.SuggestReview(context.Background(), "Inception", nil, "9")
	assert.Error(t, err)

	agent, err = NewAgent(fixedLLM{out: "  a fine movie  "})
	require.NoError(t, err)
	draft, err := agent.SuggestReview(context.Background(), "Inception", nil, "9")
	require.NoError(t, err)
	assert.Equal(t, "a fine movie", draft)
}

func TestSuggestReviewPropagatesError(t *testing.T) {
	agent, err := NewAgent(fixedLLM{err: errors.New("model down")})
	require.NoError(t, err)
	_, err = agent.SuggestReview(context.Background(), "Inception", nil, "9")
	assert.ErrorContains(t, err, "model down")
}

func TestBuildReviewPrompt(t *testing.T) {
	p := BuildReviewPrompt("Inception", []string{"scifi", "thriller"}, "9")
	assert.Contains(t, p.User, "Inception")
	assert.Contains(t, p.User, "scifi, thriller")
	assert.Contains(t, p.User, "9 out of 10")
	assert.NotEmpty(t, p.System)
}
