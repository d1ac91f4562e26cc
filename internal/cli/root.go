// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/config"
	"github.com/ollamalab/ollamalab/internal/ollama"
)

var (
	cfgFile     string
	urlOverride string
	modelFlag   string
	verbose     bool

	log = logrus.New()

	rootCmd = &cobra.Command{
		Use:   "ollamalab",
		Short: "Hands-on lessons for working with a local Ollama model",
		Long: `ollamalab is a guided tour of talking to a local LLM through Ollama:
blocking requests, streaming, multi-turn chat, prompt engineering,
sampling parameters and benchmarking, each as its own subcommand.

Ollama must be running locally (ollama serve) before the lessons work.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.ollamalab/config.toml)")
	rootCmd.PersistentFlags().StringVar(&urlOverride, "url", "", "Ollama base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "model to use (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig resolves the effective configuration: file, then
// environment, then flags.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if urlOverride != "" {
		cfg.OllamaURL = urlOverride
	}
	if modelFlag != "" {
		cfg.DefaultModel = modelFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"url":   cfg.OllamaURL,
		"model": cfg.DefaultModel,
	}).Debug("configuration resolved")

	return cfg, nil
}

// newClient builds the Ollama client from the effective configuration.
func newClient() (*ollama.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return ollama.NewClientWithConfig(cfg.ClientConfig()), cfg, nil
}
