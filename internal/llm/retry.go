package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// RetryPolicy bounds a single Invoke. The zero value, like MaxAttempts 1 with
// no Timeout, makes exactly one call that may block indefinitely.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Timeout     time.Duration
}

// Retrying applies a RetryPolicy to another Client.
type Retrying struct {
	next   Client
	policy RetryPolicy
	logger *log.Logger
}

func NewRetrying(next Client, policy RetryPolicy, logger *log.Logger) *Retrying {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Retrying{next: next, policy: policy, logger: logger}
}

func (r *Retrying) Name() string {
	return r.next.Name()
}

func (r *Retrying) Model() string {
	return ModelName(r.next)
}

func (r *Retrying) Invoke(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.invokeOnce(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.policy.MaxAttempts {
			break
		}

		r.logger.Warn("model call failed, retrying",
			"provider", r.next.Name(), "attempt", attempt, "max", r.policy.MaxAttempts, "err", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.policy.Delay):
		}
	}

	if r.policy.MaxAttempts > 1 {
		return "", fmt.Errorf("%s: giving up after %d attempts: %w", r.next.Name(), r.policy.MaxAttempts, lastErr)
	}
	return "", lastErr
}

func (r *Retrying) invokeOnce(ctx context.Context, prompt string) (string, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.next.Invoke(ctx, prompt)
}

// ModelName reports the model identifier behind c, or "" when c does not
// expose one.
func ModelName(c Client) string {
	if m, ok := c.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}
