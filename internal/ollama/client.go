// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeMalformedBody
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsNotRunning checks if an error indicates Ollama is not reachable.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning || clientErr.Type == ErrTypeConnection
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client. There
// is no process-wide mutable default; each client owns its own copy.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// StreamTimeout bounds the wait for the first response byte of a
	// streaming request, which is where model loading happens
	// (default: 120s). The stream itself is governed by the context.
	StreamTimeout time.Duration

	// DefaultModel to use when a request leaves Model empty
	// (default: "neural-chat")
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://localhost:11434",
		Timeout:       60 * time.Second,
		StreamTimeout: 120 * time.Second,
		DefaultModel:  "neural-chat",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API. It is safe for
// concurrent use, although individual generation calls are sequential
// and blocking by design.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom
// configuration, filling in defaults for any zero values.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 120 * time.Second
	}
	if config.DefaultModel == "" {
		config.DefaultModel = "neural-chat"
	}

	// Streaming gets its own client: no overall timeout (generation can
	// legitimately run for minutes; cancellation is context-driven), but
	// a bounded wait for the response headers while the model loads.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.StreamTimeout

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
	}
}

// Config returns the client configuration.
func (c *Client) Config() *ClientConfig {
	return c.config
}

// DefaultModel returns the model used when a request names none.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from Ollama: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all locally available models from Ollama.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list models: " + resp.Status,
		}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return result.Models, nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate sends a non-streaming generation request: one blocking read
// of the entire response body, parsed as a single JSON object.
//
// The returned Result is never nil. An unparsable body yields
// OutcomeMalformedBody with empty text; transport failures yield the
// corresponding outcome. The error mirrors Result.Err for callers that
// prefer idiomatic error checks.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	req.Stream = false
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}

	httpReq, err := c.newGenerateRequest(ctx, req)
	if err != nil {
		return failedResult(err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failedResult(transportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(statusError(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failedResult(transportError(err))
	}

	var gen GenerateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return failedResult(&ClientError{
			Type:    ErrTypeMalformedBody,
			Message: "response body is not valid JSON",
			Cause:   err,
		})
	}

	return &Result{
		Text:       gen.Response,
		TokenCount: gen.EvalCount,
		Duration:   time.Duration(gen.TotalDuration),
		Outcome:    OutcomeSuccess,
	}, nil
}

// GenerateStream sends a streaming generation request and consumes the
// fragment stream, calling cb for each fragment in arrival order.
//
// The returned Result is never nil; on failure it preserves any text
// accumulated before the transport gave out. A stream that ends without
// an explicit final fragment is still a success.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, cb FragmentCallback) (*Result, error) {
	req.Stream = true
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}

	httpReq, err := c.newGenerateRequest(ctx, req)
	if err != nil {
		return failedResult(err)
	}

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return failedResult(transportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(statusError(resp))
	}

	result := NewStreamReader(resp.Body).Process(ctx, cb)
	if result.Err != nil {
		return result, result.Err
	}
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// newGenerateRequest builds the POST /api/generate request.
func (c *Client) newGenerateRequest(ctx context.Context, req GenerateRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// transportError wraps a round-trip failure in the client taxonomy.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeUnknown, Message: "request canceled", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: "cannot connect to Ollama", Cause: err}
}

// statusError converts a non-200 response into an error, preferring the
// server's own error message when the body carries one.
func statusError(resp *http.Response) error {
	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: "generate request failed: " + resp.Status}
}

// failedResult pairs an empty-text failure Result with its error.
func failedResult(err error) (*Result, error) {
	return &Result{Outcome: classifyErr(err), Err: err}, err
}
