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

// Technique is one prompt-engineering demonstration: a weak phrasing
// and a stronger rewrite of the same intent.
type Technique struct {
	Name        string
	Description string
	Weak        string
	Strong      string
	System      string // optional, applied to the strong variant
}

// Techniques lists the demonstrations in teaching order.
var Techniques = []Technique{
	{
		Name:        "Be specific",
		Description: "Vague questions get vague answers. Spell out what you actually want.",
		Weak:        "Tell me about Python.",
		Strong:      "Explain the three most important features of Python for a data scientist, with a one-line example of each.",
	},
	{
		Name:        "Assign a role",
		Description: "A system prompt that sets a persona shapes tone and depth.",
		Weak:        "Explain what a REST API is.",
		Strong:      "Explain what a REST API is.",
		System:      "You are a senior software architect who explains concepts precisely using real-world analogies.",
	},
	{
		Name:        "Specify the format",
		Description: "Asking for a structure gets you a structure.",
		Weak:        "What are some popular programming languages?",
		Strong:      "List 5 popular programming languages. Respond only with a numbered list, one language per line, no extra text.",
	},
	{
		Name:        "Few-shot examples",
		Description: "Showing the pattern works better than describing it.",
		Weak:        "What is the past tense of swim?",
		Strong:      "Convert to past tense.\n\nrun -> ran\neat -> ate\ngo -> went\nswim ->",
	},
	{
		Name:        "Think step by step",
		Description: "Asking for intermediate steps improves reasoning on math and logic.",
		Weak:        "A train travels at 60 km/h for 2.5 hours. How far does it travel?",
		Strong:      "A train travels at 60 km/h for 2.5 hours. How far does it travel? Think step by step and show your work.",
	},
	{
		Name:        "Name the audience",
		Description: "The same concept lands differently for different readers.",
		Weak:        "Explain recursion.",
		Strong:      "Explain recursion to a 10-year-old using a simple analogy.",
	},
	{
		Name:        "Constrain the length",
		Description: "Without a limit, models ramble. With one, they summarize.",
		Weak:        "What is machine learning?",
		Strong:      "Summarize what machine learning is in exactly two sentences.",
	},
	{
		Name:        "Negative instructions",
		Description: "Saying what to leave out works as well as saying what to include.",
		Weak:        "Explain how to make coffee.",
		Strong:      "Explain how to make coffee with a simple drip machine. Do not mention espresso, grinders, or bean selection.",
	},
}

// Prompting runs the fourth lesson: each technique in turn, weak
// phrasing first, then the stronger rewrite, so the difference in
// output quality is visible side by side.
func Prompting(ctx context.Context, client *ollama.Client, w io.Writer) error {
	fmt.Fprintln(w, ui.TitleStyle.Render("Lesson 4: Prompt Engineering"))
	fmt.Fprintln(w, ui.LabelStyle.Render("Model: "+client.DefaultModel()))
	fmt.Fprintln(w)

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Ollama is not reachable: "+err.Error()))
		return err
	}

	for i, tech := range Techniques {
		fmt.Fprintln(w, ui.SectionStyle.Render(fmt.Sprintf("%d. %s", i+1, tech.Name)))
		fmt.Fprintln(w, ui.LabelStyle.Render(tech.Description))
		fmt.Fprintln(w)

		showPrompt(ctx, client, w, "Weak", tech.Weak, "")
		showPrompt(ctx, client, w, "Strong", tech.Strong, tech.System)
		fmt.Fprintln(w)
	}

	return nil
}

// showPrompt sends one variant and prints its boxed response.
func showPrompt(ctx context.Context, client *ollama.Client, w io.Writer, label, prompt, system string) {
	fmt.Fprintln(w, ui.LabelStyle.Render(label+": ")+prompt)
	if system != "" {
		fmt.Fprintln(w, ui.LabelStyle.Render("System: ")+system)
	}

	result, err := client.Generate(ctx, ollama.GenerateRequest{
		Prompt: prompt,
		System: system,
	})
	if err != nil {
		fmt.Fprintln(w, ui.ErrorStyle.Render("Failed: "+err.Error()))
		return
	}

	fmt.Fprintln(w, ui.BoxText(result.Text, ui.DefaultWidth))
}
