// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package lessons contains the guided demos: each lesson exercises one
// aspect of talking to a local model and prints an annotated walkthrough.
package lessons

import (
	"context"
	"fmt"
	"io"

	"github.com/ollamalab/ollamalab/internal/ollama"
	"github.com/ollamalab/ollamalab/internal/ui"
)

// basicPrompts are the canned examples for the first lesson.
var basicPrompts = []string{
	"Why is the sky blue? Answer in one sentence.",
	"Write a haiku about programming.",
	"What are the three laws of robotics?",
}

// Basic runs the first lesson: simple blocking requests, one prompt at
// a time, with token and timing stats after each.
func Basic(ctx context.Context, client *ollama.Client, w io.Writer) error {
	fmt.Fprintln(w, ui.TitleStyle.Render("Lesson 1: Basic Generation"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Model: "+client.DefaultModel()))
	fmt.Fprintln(w)

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Ollama is not reachable: "+err.Error()))
		fmt.Fprintln(w, ui.WarningStyle.Render("Start it with: ollama serve"))
		return err
	}

	for i, prompt := range basicPrompts {
		fmt.Fprintln(w, ui.SectionStyle.Render(fmt.Sprintf("Example %d", i+1)))
		fmt.Fprintln(w, ui.LabelStyle.Render("Prompt: ")+prompt)
		fmt.Fprintln(w)

		// Transient connection hiccups get a couple of quiet retries,
		// e.g. when Ollama is still loading the model.
		result, err := GenerateWithRetry(ctx, client,
			ollama.GenerateRequest{Prompt: prompt},
			DefaultRetryAttempts, DefaultRetryDelay)
		if err != nil {
			fmt.Fprintln(w, ui.ErrorStyle.Render("Failed: "+err.Error()))
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintln(w, ui.BoxText(result.Text, ui.DefaultWidth))
		printStats(w, result)
		fmt.Fprintln(w)
	}

	return nil
}

// printStats writes the one-line stat summary shown after each example.
func printStats(w io.Writer, result *ollama.Result) {
	fmt.Fprintln(w, ui.LabelStyle.Render(fmt.Sprintf(
		"%d tokens in %.2fs (%.1f tok/s)",
		result.TokenCount, result.Seconds(), result.TokensPerSecond(),
	)))
}
