// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package benchmark times generation across models and formats the
// comparison.
package benchmark

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ollamalab/ollamalab/internal/ollama"
	"github.com/ollamalab/ollamalab/internal/ui"
)

// DefaultPrompt keeps runs comparable across models.
const DefaultPrompt = "Explain what a hash table is in exactly three sentences."

// ModelResult is one model's benchmark measurement.
type ModelResult struct {
	Model        string
	Elapsed      time.Duration // wall clock for the whole request
	Tokens       int
	TokensPerSec float64
	Outcome      ollama.Outcome
	Err          error
}

// Succeeded reports whether the run produced a usable measurement.
func (r *ModelResult) Succeeded() bool {
	return r.Outcome == ollama.OutcomeSuccess
}

// Runner benchmarks models one at a time. Runs are sequential so the
// models never compete for the same GPU.
type Runner struct {
	client *ollama.Client
	prompt string
}

// NewRunner creates a benchmark runner. An empty prompt uses
// DefaultPrompt.
func NewRunner(client *ollama.Client, prompt string) *Runner {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &Runner{client: client, prompt: prompt}
}

// Run benchmarks each model in order with one non-streaming request. A
// model that fails is recorded and the run continues; only context
// cancellation stops the loop early.
func (r *Runner) Run(ctx context.Context, models []string, onStart func(model string)) []ModelResult {
	results := make([]ModelResult, 0, len(models))

	for _, model := range models {
		if ctx.Err() != nil {
			break
		}
		if onStart != nil {
			onStart(model)
		}

		start := time.Now()
		result, err := r.client.Generate(ctx, ollama.GenerateRequest{
			Model:  model,
			Prompt: r.prompt,
		})
		elapsed := time.Since(start)

		mr := ModelResult{
			Model:   model,
			Elapsed: elapsed,
			Outcome: result.Outcome,
			Err:     err,
		}
		if err == nil {
			mr.Tokens = result.TokenCount
			if elapsed > 0 {
				mr.TokensPerSec = float64(result.TokenCount) / elapsed.Seconds()
			}
		}
		results = append(results, mr)
	}

	return results
}

// FormatTable renders results as an aligned text table, fastest first
// among the successful runs.
func FormatTable(results []ModelResult) string {
	sorted := make([]ModelResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Succeeded() != sorted[j].Succeeded() {
			return sorted[i].Succeeded()
		}
		return sorted[i].TokensPerSec > sorted[j].TokensPerSec
	})

	nameWidth := len("MODEL")
	for _, r := range sorted {
		if len(r.Model) > nameWidth {
			nameWidth = len(r.Model)
		}
	}

	var sb strings.Builder
	sb.WriteString(ui.SectionStyle.Render(fmt.Sprintf(
		"%-*s  %10s  %8s  %10s", nameWidth, "MODEL", "TIME", "TOKENS", "TOK/S")))
	sb.WriteString("\n")

	for _, r := range sorted {
		if !r.Succeeded() {
			sb.WriteString(fmt.Sprintf("%-*s  %s\n",
				nameWidth, r.Model, ui.ErrorStyle.Render(r.Outcome.String())))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-*s  %9.2fs  %8d  %10.1f\n",
			nameWidth, r.Model, r.Elapsed.Seconds(), r.Tokens, r.TokensPerSec))
	}

	return sb.String()
}
