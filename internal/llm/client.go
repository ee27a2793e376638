// Package llm provides the single capability the chat pipeline needs from a
// hosted model: send one prompt, get one text back.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Client is a stateless text-completion handle. Every Invoke is an
// independent single-turn request; nothing is carried between calls.
type Client interface {
	Name() string
	Invoke(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider    string        `mapstructure:"provider" json:"provider"`
	APIKey      string        `mapstructure:"api_key" json:"-"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
	CleanOutput bool          `mapstructure:"clean_output" json:"clean_output"`
}

// New builds the provider named by cfg.Provider and wraps it with the
// configured timeout and attempt policy. Output is cleaned only when
// cfg.CleanOutput is set.
func New(ctx context.Context, cfg Config, logger *log.Logger) (Client, error) {
	var (
		base Client
		err  error
	)

	switch cfg.Provider {
	case "gemini", "":
		base, err = NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "openrouter":
		base = NewOpenRouterClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "ollama":
		base = NewOllamaClient(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CleanOutput {
		base = NewCleaning(base)
	}

	return NewRetrying(base, RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       cfg.RetryDelay,
		Timeout:     cfg.Timeout,
	}, logger), nil
}

// StatusError is returned by the HTTP-backed providers for any non-200 reply.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.Code, e.Body)
}
