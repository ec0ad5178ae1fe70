package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/user/linkstitcher/internal/config"
)

// ErrMissingCredentials is returned by New when the provider needs an API
// key that is not configured.
var ErrMissingCredentials = errors.New("missing LLM credentials")

// Completer sends a prompt to a text-completion service and returns the raw
// response text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New builds the configured provider wrapped in a worker Pool.
func New(cfg config.LLMConfig) (*Pool, error) {
	var c Completer

	switch cfg.Provider {
	case "anthropic":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrMissingCredentials)
		}
		c = NewAnthropic(key, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	case "openai":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredentials)
		}
		c = NewOpenAI(key, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	case "openrouter":
		key := firstNonEmpty(cfg.APIKey, os.Getenv("OPENROUTER_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: OPENROUTER_API_KEY not set", ErrMissingCredentials)
		}
		c = NewOpenAI(key, cfg.Model, firstNonEmpty(cfg.BaseURL, OpenRouterBaseURL), cfg.MaxTokens)
	case "command", "gemini-cli":
		if len(cfg.Command) == 0 {
			return nil, errors.New("llm.command is empty")
		}
		if _, err := exec.LookPath(cfg.Command[0]); err != nil {
			return nil, fmt.Errorf("%s not found: %w", cfg.Command[0], err)
		}
		c = &CommandCompleter{Command: cfg.Command}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return NewPool(c, cfg.Workers, cfg.Timeout), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
