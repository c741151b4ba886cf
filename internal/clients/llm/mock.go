package llm

import (
	"context"
	"strings"
)

// Mock answers without calling a model. The reply echoes the user prompt as
// a single speech document so downstream normalisation has something real
// to work on.
type Mock struct{}

func (Mock) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := strings.Join(strings.Fields(prompt.User), " ")
	if len(text) > 200 {
		text = text[:200]
	}
	return "<speak>" + text + "</speak>", nil
}
