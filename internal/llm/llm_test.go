package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var _ Generator = GeneratorFunc(nil)
var _ Generator = (*Retrying)(nil)

func TestRetrying_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "answer", nil
	})

	retries := 0
	r := &Retrying{Gen: gen, Backoff: time.Millisecond, OnRetry: func() { retries++ }}

	out, err := r.Generate(context.Background(), "question")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "answer" {
		t.Errorf("Generate() = %q, want answer", out)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if retries != 2 {
		t.Errorf("retries = %d, want 2", retries)
	}
}

func TestRetrying_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", errors.New("down")
	})

	r := &Retrying{Gen: gen, Attempts: 3, Backoff: time.Millisecond}

	_, err := r.Generate(context.Background(), "question")
	if err == nil {
		t.Fatal("Generate() error = nil, want failure")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !strings.Contains(err.Error(), "3 attempts failed") {
		t.Errorf("error = %v, want attempt count in message", err)
	}
}

func TestRetrying_HonorsContextWhileWaiting(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Retrying{Gen: gen, Backoff: time.Hour}
	_, err := r.Generate(ctx, "question")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
