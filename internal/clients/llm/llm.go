package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

// Prompt is a single-turn chat completion request.
type Prompt struct {
	System      string
	User        string
	Temperature *float64
}

// Client completes prompts with a language model.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt Prompt) (string, error)

func (f ClientFunc) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return f(ctx, prompt)
}

const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// New returns the client for the configured provider. An empty provider
// means openai when a key is present, otherwise mock.
func New(cfg Settings, log *logger.Logger) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderMock
		if strings.TrimSpace(cfg.APIKey) != "" {
			provider = ProviderOpenAI
		}
	}
	switch provider {
	case ProviderOpenAI:
		c, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		if log != nil {
			log.Info("llm client ready", "provider", provider, "model", c.Model)
		}
		return c, nil
	case ProviderMock:
		if log != nil {
			log.Warn("llm client using mock provider")
		}
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Float is a convenience for optional temperatures.
func Float(v float64) *float64 { return &v }
