// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome classifies how a generation call ended.
type Outcome int

const (
	// OutcomeSuccess means the stream was consumed to completion. A
	// transport that closes cleanly without an explicit final fragment
	// still counts as success; the accumulated text is valid output.
	OutcomeSuccess Outcome = iota

	// OutcomeConnectionFailed means the server was unreachable or the
	// connection dropped.
	OutcomeConnectionFailed

	// OutcomeTimedOut means the caller-specified deadline elapsed.
	OutcomeTimedOut

	// OutcomeMalformedBody means the entire non-streaming response body
	// failed to parse as JSON. Per-line parse failures in streaming mode
	// are tolerated and never produce this outcome.
	OutcomeMalformedBody

	// OutcomeOtherError is the catch-all for remaining transport or
	// protocol failures.
	OutcomeOtherError
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConnectionFailed:
		return "connection_failed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeMalformedBody:
		return "malformed_body"
	default:
		return "error"
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the aggregate outcome of a generation call, streamed or not.
// Text holds the order-preserving concatenation of every fragment's text
// piece; on failure it preserves whatever accumulated before the
// transport gave out.
type Result struct {
	Text       string
	TokenCount int           // from the final fragment's eval_count, zero if absent
	Duration   time.Duration // from the final fragment's total_duration, zero if absent
	Outcome    Outcome
	Err        error // underlying cause, nil when Outcome is OutcomeSuccess
}

// Succeeded reports whether the call completed without a transport or
// protocol failure.
func (r *Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Seconds returns the generation duration in seconds.
func (r *Result) Seconds() float64 {
	return r.Duration.Seconds()
}

// TokensPerSecond calculates the generation speed, or zero when the
// duration is unknown.
func (r *Result) TokensPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.TokenCount) / r.Duration.Seconds()
}

// =============================================================================
// STREAM READER
// =============================================================================

// FragmentCallback receives each fragment as it is parsed, in arrival
// order, before the next line is read. Useful for live printing or
// forwarding.
type FragmentCallback func(frag Fragment)

// StreamReader consumes a newline-delimited JSON fragment stream from an
// open generation response body. Each reader is single-use: one call to
// Process, then discard.
//
// Line handling:
//   - empty lines are skipped (keep-alive artifacts)
//   - malformed JSON lines are skipped without aborting the stream
//   - a fragment with done=true terminates consumption immediately
type StreamReader struct {
	reader *bufio.Reader
	text   strings.Builder

	tokenCount int
	duration   time.Duration
	done       bool
}

// NewStreamReader creates a stream reader over an open response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream until a final fragment, end of transport, or
// failure, invoking cb (if non-nil) for every well-formed fragment. The
// returned Result is never nil; on failure it carries the classified
// outcome and the text accumulated so far.
func (s *StreamReader) Process(ctx context.Context, cb FragmentCallback) *Result {
	for {
		select {
		case <-ctx.Done():
			return s.finish(ctx.Err())
		default:
		}

		line, err := s.reader.ReadBytes('\n')

		// A final partial line without a trailing newline still counts.
		if len(line) > 0 {
			if frag, ok := s.consumeLine(line); ok {
				if cb != nil {
					cb(frag)
				}
				if frag.Done {
					return s.finish(nil)
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				// Transport ended without an explicit terminator; the
				// accumulated text is still valid output.
				return s.finish(nil)
			}
			return s.finish(err)
		}
	}
}

// Text returns the content accumulated so far.
func (s *StreamReader) Text() string {
	return s.text.String()
}

// Result returns the aggregate state as a clean-termination result.
// Useful after Process for callers that discarded its return value.
func (s *StreamReader) Result() *Result {
	return s.finish(nil)
}

// consumeLine parses a single line into a Fragment and folds it into the
// accumulator. Returns ok=false for empty or malformed lines, which are
// skipped without contributing to the result.
func (s *StreamReader) consumeLine(line []byte) (Fragment, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Fragment{}, false
	}

	var wire struct {
		Model         string `json:"model"`
		Response      string `json:"response"`
		Done          bool   `json:"done"`
		EvalCount     int    `json:"eval_count"`
		TotalDuration int64  `json:"total_duration"`
	}
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		// Tolerate transient malformed chunks rather than interrupting
		// live display.
		return Fragment{}, false
	}

	s.text.WriteString(wire.Response)

	if wire.Done {
		s.done = true
		s.tokenCount = wire.EvalCount
		s.duration = time.Duration(wire.TotalDuration)
	}

	return Fragment{
		Model:         wire.Model,
		Response:      wire.Response,
		Done:          wire.Done,
		EvalCount:     wire.EvalCount,
		TotalDuration: wire.TotalDuration,
	}, true
}

// finish builds the aggregate result. A nil err is a clean termination.
func (s *StreamReader) finish(err error) *Result {
	res := &Result{
		Text:       s.text.String(),
		TokenCount: s.tokenCount,
		Duration:   s.duration,
		Outcome:    OutcomeSuccess,
	}
	if err != nil {
		res.Outcome = classifyErr(err)
		res.Err = err
	}
	return res
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// classifyErr maps a transport or protocol error onto the Outcome
// taxonomy.
func classifyErr(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimedOut
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrTypeTimeout:
			return OutcomeTimedOut
		case ErrTypeNotRunning, ErrTypeConnection:
			return OutcomeConnectionFailed
		case ErrTypeMalformedBody:
			return OutcomeMalformedBody
		}
		return OutcomeOtherError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimedOut
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return OutcomeConnectionFailed
	}

	return OutcomeOtherError
}
