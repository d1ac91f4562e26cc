// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /api/generate endpoint.
type GenerateRequest struct {
	Model   string   `json:"model"`            // Model name (e.g., "neural-chat")
	Prompt  string   `json:"prompt"`           // Full context, caller-assembled
	Stream  bool     `json:"stream"`           // Selects the response shape
	System  string   `json:"system,omitempty"` // Optional system prompt
	Options *Options `json:"options,omitempty"`
}

// Options contains sampling and generation parameters. All fields are
// optional and passed through to the server verbatim; zero values are
// omitted from the wire payload.
type Options struct {
	Temperature   float64  `json:"temperature,omitempty"`    // 0.0-2.0, higher = more creative (default 0.8)
	TopP          float64  `json:"top_p,omitempty"`          // Nucleus sampling threshold, 0.0-1.0 (default 0.9)
	TopK          int      `json:"top_k,omitempty"`          // Sample from the k most likely tokens (default 40)
	RepeatPenalty float64  `json:"repeat_penalty,omitempty"` // Penalize repetition (default 1.1)
	NumPredict    int      `json:"num_predict,omitempty"`    // Max tokens to generate, -1 for unlimited
	NumCtx        int      `json:"num_ctx,omitempty"`        // Context window size (default 2048)
	Seed          int      `json:"seed,omitempty"`           // Random seed for reproducibility
	Stop          []string `json:"stop,omitempty"`           // Stop sequences
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the full response body from /api/generate in
// non-streaming mode. In streaming mode the same shape arrives one
// fragment per line; see Fragment.
type GenerateResponse struct {
	Model         string    `json:"model"`
	CreatedAt     time.Time `json:"created_at"`
	Response      string    `json:"response"`
	Done          bool      `json:"done"`
	DoneReason    string    `json:"done_reason,omitempty"`
	TotalDuration int64     `json:"total_duration,omitempty"` // nanoseconds
	EvalCount     int       `json:"eval_count,omitempty"`     // tokens generated
	EvalDuration  int64     `json:"eval_duration,omitempty"`  // nanoseconds
}

// Fragment is one unit of a streamed generation response: a piece of
// text, and on the final fragment the completion metadata.
type Fragment struct {
	// Model is the model name echoed by the server.
	Model string

	// Response is the text piece, possibly empty.
	Response string

	// Done signals the last fragment of the stream.
	Done bool

	// EvalCount is the generated token count, populated only when Done.
	EvalCount int

	// TotalDuration is the total generation time in nanoseconds,
	// populated only when Done.
	TotalDuration int64
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo describes one locally available model.
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// SizeGB returns the model size in gigabytes.
func (m *ModelInfo) SizeGB() float64 {
	return float64(m.Size) / (1024 * 1024 * 1024)
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// APIError is the error body returned by the Ollama API.
type APIError struct {
	Error string `json:"error"`
}
