// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List locally installed models",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient()
		if err != nil {
			return err
		}

		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		if len(models) == 0 {
			fmt.Println(ui.WarningStyle.Render("No models installed."))
			fmt.Println("Pull one with: ollama pull " + cfg.DefaultModel)
			return nil
		}

		for _, m := range models {
			marker := "  "
			if m.Name == cfg.DefaultModel {
				marker = ui.SuccessStyle.Render("* ")
			}
			fmt.Printf("%s%-30s %6.1f GB\n", marker, m.Name, m.SizeGB())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
