// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

var (
	rendererOnce sync.Once
	renderer     *glamour.TermRenderer
)

// RenderMarkdown renders model output as markdown for terminal display.
// Returns the content unchanged when stdout is not a TTY (to avoid
// corrupting piped output) or when rendering fails.
func RenderMarkdown(content string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return content
	}

	rendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return
		}
		renderer = r
	})

	if renderer == nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
