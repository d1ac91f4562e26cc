// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package ui provides terminal presentation helpers shared by the demo
// commands: lipgloss styles, display-width-aware wrapping and boxes,
// and markdown rendering for model output.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// ColorProfile detects the terminal color profile, honoring NO_COLOR
// and disabling color entirely for piped or redirected output.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// Shared styles for all commands.
var (
	// TitleStyle is used for lesson titles and banners.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// SectionStyle is used for example headings within a lesson.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")) // White

	// LabelStyle is used for stat labels and prompts.
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Light gray

	// SuccessStyle is used for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings and hints.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	// SubtleStyle is used for dividers and secondary text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Gray
)
