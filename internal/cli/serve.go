// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/config"
	"github.com/ollamalab/ollamalab/internal/ollama"
	"github.com/ollamalab/ollamalab/internal/server"
	"github.com/ollamalab/ollamalab/internal/ui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front end",
	Long: `Serves the browser version of the lessons and proxies its API
requests to the local Ollama instance. Stop with Ctrl-C.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.WebPort = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	client := ollama.NewClientWithConfig(cfg.ClientConfig())
	srv, err := server.New(cfg, client, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Changes to the config file take effect on restart; watching just
	// surfaces that a restart is needed.
	path := cfgFile
	if path == "" {
		path, _ = config.DefaultPath()
	}
	if path != "" {
		stopWatch, err := config.Watch(path, func(c *config.Config) {
			log.WithField("path", path).Warn("config file changed; restart to apply")
		}, func(err error) {
			log.WithError(err).Debug("config watch error")
		})
		if err == nil {
			defer stopWatch()
		}
	}

	fmt.Println(ui.TitleStyle.Render("OllamaLab web"))
	fmt.Printf("%s http://localhost:%d\n", ui.LabelStyle.Render("Open:"), cfg.WebPort)
	fmt.Printf("%s %s (%s)\n", ui.LabelStyle.Render("Upstream:"), cfg.OllamaURL, cfg.DefaultModel)

	return srv.ListenAndServe(ctx)
}
