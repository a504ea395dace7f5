// Package llm abstracts the natural-language inference service behind a
// narrow interface so the deterministic pipeline can be tested with
// scripted fakes.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Generator sends a text prompt to an inference backend and returns the raw
// text response. Implementations must not interpret the response; callers
// own all sanitation and decoding.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Retrying decorates a Generator with a bounded retry policy. It is meant
// for the chat/compose path only; extraction paths fall back to their manual
// heuristics on first failure instead of retrying.
type Retrying struct {
	Gen      Generator
	Attempts int           // defaults to 3
	Backoff  time.Duration // base delay, grows linearly; defaults to 250ms
	OnRetry  func()        // optional hook, called before each retry
}

// Generate tries the underlying generator up to Attempts times with a brief
// linear backoff between tries. The context is honored while waiting.
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if r.OnRetry != nil {
				r.OnRetry()
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("Generate: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * backoff):
			}
		}

		out, err := r.Gen.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("Generate: %d attempts failed: %w", attempts, lastErr)
}
