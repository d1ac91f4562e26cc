// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/lessons"
)

var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Lesson 1: simple blocking generation",
	Long: `Sends a few canned prompts one at a time and waits for each full
response, then shows token count and generation speed. The simplest
possible way to talk to the model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return lessons.Basic(cmd.Context(), client, os.Stdout)
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Lesson 2: streaming generation",
	Long: `The same requests as the basic lesson, but consumed as a live
stream: each text fragment is printed the moment it arrives instead of
waiting for the full response.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return lessons.Streaming(cmd.Context(), client, os.Stdout)
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Lesson 4: prompt engineering techniques",
	Long: `Runs eight prompt-engineering techniques back to back. Each shows
a weak phrasing and a stronger rewrite of the same question, so the
difference in output quality is visible side by side.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return lessons.Prompting(cmd.Context(), client, os.Stdout)
	},
}

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Lesson 5: sampling parameter tuning",
	Long: `Generates from the same prompt under creative, balanced and
precise sampling presets, then demonstrates the response-length cap.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient()
		if err != nil {
			return err
		}
		return lessons.Tuning(cmd.Context(), client, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(basicCmd, streamCmd, promptCmd, tuneCmd)
}
