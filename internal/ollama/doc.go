// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package ollama provides the HTTP client for a local Ollama server's
// generation API, including the streaming line-protocol consumer.
//
// The generation endpoint returns either a single JSON object
// (non-streaming) or a sequence of newline-delimited JSON fragments
// (streaming). StreamReader consumes the streamed form: it parses each
// non-empty line independently, skips malformed lines without aborting,
// forwards every fragment to the caller for live display, and
// accumulates the text pieces into an aggregate Result.
//
// Example:
//
//	client := ollama.NewClient()
//	result, err := client.GenerateStream(ctx, ollama.GenerateRequest{
//	    Prompt: "Write a haiku about programming",
//	}, func(frag ollama.Fragment) {
//	    fmt.Print(frag.Response)
//	})
//	if err != nil {
//	    // result still holds any text accumulated before the failure
//	}
//
// Errors are classified into the Outcome taxonomy (connection failed,
// timed out, malformed body, other) carried on every Result. The client
// never retries; retry policy belongs to callers and operates by
// re-issuing the entire request.
package ollama
