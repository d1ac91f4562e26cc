// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/benchmark"
	"github.com/ollamalab/ollamalab/internal/ui"
)

var (
	benchModels []string
	benchPrompt string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Lesson 6: benchmark installed models",
	Long: `Sends the same prompt to each model and compares wall-clock time,
token count and generation speed. Without --models, every locally
installed model is benchmarked. Models run one at a time so they never
compete for the GPU.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringSliceVar(&benchModels, "models", nil, "models to benchmark (default: all installed)")
	benchCmd.Flags().StringVar(&benchPrompt, "prompt", "", "benchmark prompt (default: built-in)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	models := benchModels
	if len(models) == 0 {
		installed, err := client.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		if len(installed) == 0 {
			return fmt.Errorf("no models installed; pull one with: ollama pull %s", client.DefaultModel())
		}
		for _, m := range installed {
			models = append(models, m.Name)
		}
	}

	fmt.Println(ui.TitleStyle.Render("Lesson 6: Benchmarking"))
	fmt.Printf("%s %d model(s)\n\n", ui.LabelStyle.Render("Benchmarking"), len(models))

	runner := benchmark.NewRunner(client, benchPrompt)
	results := runner.Run(ctx, models, func(model string) {
		fmt.Println(ui.SubtleStyle.Render("running " + model + "..."))
	})

	fmt.Println()
	fmt.Print(benchmark.FormatTable(results))
	return nil
}
