// ollamalab - hands-on lessons for working with a local Ollama model.
//
// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/ollamalab/ollamalab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
