// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 70

// TerminalWidth returns the current terminal width, or DefaultWidth
// when stdout is not a terminal.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// Wrap breaks text into lines no wider than width display cells,
// measured with runewidth so wide characters count properly. Words
// longer than the width are emitted on their own line rather than
// split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}

	return lines
}

// Box renders lines inside a rounded border, padded to the width of the
// longest line.
func Box(lines []string) string {
	width := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > width {
			width = w
		}
	}

	var sb strings.Builder
	sb.WriteString("╭" + strings.Repeat("─", width+2) + "╮\n")
	for _, line := range lines {
		pad := width - runewidth.StringWidth(line)
		sb.WriteString("│ " + line + strings.Repeat(" ", pad) + " │\n")
	}
	sb.WriteString("╰" + strings.Repeat("─", width+2) + "╯")
	return sb.String()
}

// BoxText wraps text to the given width and renders it in a box.
func BoxText(text string, width int) string {
	return Box(Wrap(text, width))
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return SubtleStyle.Render(strings.Repeat("─", width))
}
