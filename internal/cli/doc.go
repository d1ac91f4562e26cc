// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package cli defines the ollamalab command tree.
//
// Each lesson is a subcommand so they can be run independently and in
// any order:
//
//	ollamalab basic      # lesson 1: blocking generation
//	ollamalab stream     # lesson 2: live streaming
//	ollamalab chat       # lesson 3: multi-turn REPL
//	ollamalab prompt     # lesson 4: prompt engineering
//	ollamalab tune       # lesson 5: parameter tuning
//	ollamalab bench      # lesson 6: model benchmarking
//	ollamalab serve      # web front end
//
// Global flags (--url, --model, --config) override the config file,
// which in turn is overridden by OLLAMALAB_* environment variables.
package cli
