// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package lessons

import (
	"context"
	"time"

	"github.com/ollamalab/ollamalab/internal/ollama"
)

const (
	// DefaultRetryAttempts is the total number of tries, not extra
	// retries after the first.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = 2 * time.Second
)

// retryable reports whether an attempt is worth repeating. Connection
// and timeout failures are transient; everything else fails the same
// way on every try.
func retryable(outcome ollama.Outcome) bool {
	return outcome == ollama.OutcomeConnectionFailed || outcome == ollama.OutcomeTimedOut
}

// GenerateWithRetry calls Generate up to attempts times with a fixed
// delay between tries, retrying only transient failures. The last
// result is returned whether or not it succeeded.
func GenerateWithRetry(ctx context.Context, client *ollama.Client, req ollama.GenerateRequest, attempts int, delay time.Duration) (*ollama.Result, error) {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var result *ollama.Result
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = client.Generate(ctx, req)
		if err == nil {
			return result, nil
		}
		if !retryable(result.Outcome) {
			return result, err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return result, err
		case <-time.After(delay):
		}
	}

	return result, err
}
