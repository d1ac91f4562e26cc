// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package lessons

import (
	"context"
	"fmt"
	"io"

	"github.com/ollamalab/ollamalab/internal/ollama"
	"github.com/ollamalab/ollamalab/internal/ui"
)

// Preset sampling modes. The numbers match what the web front end
// offers, so terminal and browser lessons tell the same story.
func CreativeOptions() *ollama.Options {
	return &ollama.Options{Temperature: 0.9, TopP: 0.95, TopK: 50}
}

func PreciseOptions() *ollama.Options {
	return &ollama.Options{Temperature: 0.1, TopP: 0.5, TopK: 10}
}

func BalancedOptions() *ollama.Options {
	return &ollama.Options{Temperature: 0.7, TopP: 0.9, TopK: 40}
}

// Tuning runs the fifth lesson: the same prompt under different
// sampling presets, then the effect of the response-length cap.
func Tuning(ctx context.Context, client *ollama.Client, w io.Writer) error {
	fmt.Fprintln(w, ui.TitleStyle.Render("Lesson 5: Parameter Tuning"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Model: "+client.DefaultModel()))
	fmt.Fprintln(w)

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Ollama is not reachable: "+err.Error()))
		return err
	}

	const prompt = "Invent a name and slogan for a coffee shop run by robots."

	modes := []struct {
		name string
		opts *ollama.Options
	}{
		{"Creative (temp 0.9, top_p 0.95, top_k 50)", CreativeOptions()},
		{"Balanced (temp 0.7, top_p 0.9, top_k 40)", BalancedOptions()},
		{"Precise (temp 0.1, top_p 0.5, top_k 10)", PreciseOptions()},
	}

	fmt.Fprintln(w, ui.SectionStyle.Render("Sampling presets"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Prompt: ")+prompt)
	fmt.Fprintln(w)

	for _, mode := range modes {
		fmt.Fprintln(w, ui.LabelStyle.Render(mode.name))

		result, err := client.Generate(ctx, ollama.GenerateRequest{
			Prompt:  prompt,
			Options: mode.opts,
		})
		if err != nil {
			fmt.Fprintln(w, ui.ErrorStyle.Render("Failed: "+err.Error()))
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintln(w, ui.BoxText(result.Text, ui.DefaultWidth))
		printStats(w, result)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.SectionStyle.Render("Response length (num_predict)"))
	fmt.Fprintln(w)

	lengths := []struct {
		name       string
		numPredict int
	}{
		{"Short (50 tokens)", 50},
		{"Long (500 tokens)", 500},
	}

	const lengthPrompt = "Describe the history of the internet."
	for _, l := range lengths {
		fmt.Fprintln(w, ui.LabelStyle.Render(l.name))

		opts := BalancedOptions()
		opts.NumPredict = l.numPredict

		result, err := client.Generate(ctx, ollama.GenerateRequest{
			Prompt:  lengthPrompt,
			Options: opts,
		})
		if err != nil {
			fmt.Fprintln(w, ui.ErrorStyle.Render("Failed: "+err.Error()))
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintln(w, ui.BoxText(result.Text, ui.DefaultWidth))
		printStats(w, result)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.SectionStyle.Render("Context window (num_ctx)"))
	fmt.Fprintln(w, ui.LabelStyle.Render("A larger window lets the model use a long prompt without truncation."))
	fmt.Fprintln(w)

	ctxOpts := BalancedOptions()
	ctxOpts.NumCtx = 8192

	result, err := client.Generate(ctx, ollama.GenerateRequest{
		Prompt:  "Summarize the key tradeoffs between SQL and NoSQL databases in one short paragraph.",
		Options: ctxOpts,
	})
	if err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Failed: "+err.Error()))
		return nil
	}

	fmt.Fprintln(w, ui.BoxText(result.Text, ui.DefaultWidth))
	printStats(w, result)

	return nil
}
