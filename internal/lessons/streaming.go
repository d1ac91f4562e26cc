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

var streamingPrompts = []string{
	"Tell me a short story about a robot learning to paint.",
	"Explain how a compiler works, briefly.",
}

// Streaming runs the second lesson: the same requests as the basic
// lesson but consumed as a live stream, each fragment printed the
// moment it arrives.
func Streaming(ctx context.Context, client *ollama.Client, w io.Writer) error {
	fmt.Fprintln(w, ui.TitleStyle.Render("Lesson 2: Streaming"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Model: "+client.DefaultModel()))
	fmt.Fprintln(w)

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Ollama is not reachable: "+err.Error()))
		return err
	}

	for i, prompt := range streamingPrompts {
		fmt.Fprintln(w, ui.SectionStyle.Render(fmt.Sprintf("Example %d", i+1)))
		fmt.Fprintln(w, ui.LabelStyle.Render("Prompt: ")+prompt)
		fmt.Fprintln(w)

		result, err := client.GenerateStream(ctx, ollama.GenerateRequest{Prompt: prompt},
			func(frag ollama.Fragment) {
				fmt.Fprint(w, frag.Response)
			})
		fmt.Fprintln(w)

		if err != nil {
			// Whatever streamed before the failure has already been shown.
			fmt.Fprintln(w, ui.ErrorStyle.Render("Stream ended early: "+err.Error()))
			fmt.Fprintln(w)
			continue
		}

		printStats(w, result)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.SectionStyle.Render("Streaming with parameters"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Same request, temperature 0.1: near-deterministic output."))
	fmt.Fprintln(w)

	result, err := client.GenerateStream(ctx, ollama.GenerateRequest{
		Prompt:  "List the planets of the solar system in order.",
		Options: &ollama.Options{Temperature: 0.1, TopP: 0.5, TopK: 10},
	}, func(frag ollama.Fragment) {
		fmt.Fprint(w, frag.Response)
	})
	fmt.Fprintln(w)
	if err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Stream ended early: "+err.Error()))
	} else {
		printStats(w, result)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.SectionStyle.Render("Why streaming?"))
	fmt.Fprintln(w, ui.Divider(40))
	fmt.Fprintln(w, "The full answer takes just as long either way, but streaming")
	fmt.Fprintln(w, "shows the first words immediately instead of a long silence.")

	return nil
}
