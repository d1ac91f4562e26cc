// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package ollama

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// faultyReader yields its data and then a non-EOF error, simulating a
// transport that drops mid-stream.
type faultyReader struct {
	data string
	err  error
	pos  int
}

func (r *faultyReader) Read(p []byte) (int, error) {
	if r.pos < len(r.data) {
		n := copy(p, r.data[r.pos:])
		r.pos += n
		return n, nil
	}
	return 0, r.err
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_ConcatenatesFragmentsInOrder(t *testing.T) {
	stream := `{"response":"Hello"}` + "\n" +
		`{"response":", "}` + "\n" +
		`{"response":"world"}` + "\n" +
		`{"response":"!","done":true,"eval_count":4,"total_duration":1500000000}` + "\n"

	var pieces []string
	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(frag Fragment) {
		pieces = append(pieces, frag.Response)
	})

	if result.Text != "Hello, world!" {
		t.Errorf("Text = %q, want 'Hello, world!'", result.Text)
	}

	if result.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %v, want success", result.Outcome)
	}

	if result.TokenCount != 4 {
		t.Errorf("TokenCount = %d, want 4", result.TokenCount)
	}

	if len(pieces) != 4 {
		t.Errorf("callback fired %d times, want 4", len(pieces))
	}

	if strings.Join(pieces, "") != result.Text {
		t.Error("live pieces do not match accumulated text")
	}
}

func TestStreamReader_MalformedLineIsSkipped(t *testing.T) {
	clean := `{"response":"a"}` + "\n" +
		`{"response":"b","done":true}` + "\n"
	dirty := `{"response":"a"}` + "\n" +
		`{not json at all` + "\n" +
		`{"response":"b","done":true}` + "\n"

	cleanResult := NewStreamReader(strings.NewReader(clean)).Process(context.Background(), nil)
	dirtyResult := NewStreamReader(strings.NewReader(dirty)).Process(context.Background(), nil)

	if dirtyResult.Text != cleanResult.Text {
		t.Errorf("Text with malformed line = %q, want %q", dirtyResult.Text, cleanResult.Text)
	}

	if dirtyResult.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %v, want success", dirtyResult.Outcome)
	}
}

func TestStreamReader_MalformedLineEmitsNoFragment(t *testing.T) {
	stream := `garbage` + "\n" +
		`{"response":"ok","done":true}` + "\n"

	calls := 0
	NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(frag Fragment) {
		calls++
	})

	if calls != 1 {
		t.Errorf("callback fired %d times, want 1", calls)
	}
}

func TestStreamReader_EmptyLinesSkipped(t *testing.T) {
	stream := "\n\n" + `{"response":"x"}` + "\n\n" + `{"done":true}` + "\n"

	calls := 0
	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(frag Fragment) {
		calls++
	})

	if result.Text != "x" {
		t.Errorf("Text = %q, want 'x'", result.Text)
	}

	if calls != 2 {
		t.Errorf("callback fired %d times, want 2", calls)
	}
}

func TestStreamReader_FinalFragmentMetadata(t *testing.T) {
	stream := `{"response":"hi","done":true,"eval_count":42,"total_duration":2000000000}` + "\n"

	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), nil)

	if result.TokenCount != 42 {
		t.Errorf("TokenCount = %d, want 42", result.TokenCount)
	}

	if result.Seconds() != 2.0 {
		t.Errorf("Seconds() = %f, want 2.0", result.Seconds())
	}
}

func TestStreamReader_StopsAfterFinalFragment(t *testing.T) {
	// Lines after done=true must not be read or accumulated.
	stream := `{"response":"a","done":true}` + "\n" +
		`{"response":"b"}` + "\n"

	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), nil)

	if result.Text != "a" {
		t.Errorf("Text = %q, want 'a'", result.Text)
	}
}

func TestStreamReader_MissingFieldsDefault(t *testing.T) {
	// A fragment with no response field contributes an empty piece; a
	// final fragment without counts leaves them zero.
	stream := `{"model":"neural-chat"}` + "\n" +
		`{"response":"t"}` + "\n" +
		`{"done":true}` + "\n"

	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), nil)

	if result.Text != "t" {
		t.Errorf("Text = %q, want 't'", result.Text)
	}

	if result.TokenCount != 0 || result.Duration != 0 {
		t.Errorf("counts = (%d, %v), want zeros", result.TokenCount, result.Duration)
	}
}

func TestStreamReader_TransportEndWithoutTerminator(t *testing.T) {
	stream := `{"response":"partial "}` + "\n" +
		`{"response":"output"}` + "\n"

	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), nil)

	if result.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %v, want success", result.Outcome)
	}

	if result.Text != "partial output" {
		t.Errorf("Text = %q", result.Text)
	}

	if result.TokenCount != 0 {
		t.Errorf("TokenCount = %d, want 0", result.TokenCount)
	}
}

func TestStreamReader_EmptyStream(t *testing.T) {
	result := NewStreamReader(strings.NewReader("")).Process(context.Background(), nil)

	if result.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %v, want success", result.Outcome)
	}

	if result.Text != "" {
		t.Errorf("Text = %q, want empty", result.Text)
	}

	if result.TokenCount != 0 || result.Duration != 0 {
		t.Errorf("counts = (%d, %v), want zeros", result.TokenCount, result.Duration)
	}
}

func TestStreamReader_FinalLineWithoutNewline(t *testing.T) {
	stream := `{"response":"a"}` + "\n" + `{"response":"b","done":true,"eval_count":2}`

	result := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), nil)

	if result.Text != "ab" {
		t.Errorf("Text = %q, want 'ab'", result.Text)
	}

	if result.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", result.TokenCount)
	}
}

func TestStreamReader_TransportFailurePreservesPartialText(t *testing.T) {
	reader := &faultyReader{
		data: `{"response":"one "}` + "\n" + `{"response":"two"}` + "\n",
		err:  &net.OpError{Op: "read", Err: errors.New("connection reset")},
	}

	result := NewStreamReader(reader).Process(context.Background(), nil)

	if result.Outcome != OutcomeConnectionFailed {
		t.Errorf("Outcome = %v, want connection_failed", result.Outcome)
	}

	if result.Text != "one two" {
		t.Errorf("Text = %q, want 'one two'", result.Text)
	}

	if result.Err == nil {
		t.Error("Err should be set")
	}
}

func TestStreamReader_TimeoutClassified(t *testing.T) {
	reader := &faultyReader{
		data: `{"response":"x"}` + "\n",
		err:  context.DeadlineExceeded,
	}

	result := NewStreamReader(reader).Process(context.Background(), nil)

	if result.Outcome != OutcomeTimedOut {
		t.Errorf("Outcome = %v, want timed_out", result.Outcome)
	}

	if result.Text != "x" {
		t.Errorf("Text = %q, want 'x'", result.Text)
	}
}

func TestStreamReader_OtherErrorClassified(t *testing.T) {
	reader := &faultyReader{
		data: "",
		err:  errors.New("protocol violation"),
	}

	result := NewStreamReader(reader).Process(context.Background(), nil)

	if result.Outcome != OutcomeOtherError {
		t.Errorf("Outcome = %v, want error", result.Outcome)
	}
}

func TestStreamReader_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewStreamReader(strings.NewReader(`{"response":"x"}`+"\n")).Process(ctx, nil)

	if result.Outcome == OutcomeSuccess {
		t.Error("cancelled consumption should not report success")
	}
}

// =============================================================================
// OUTCOME TESTS
// =============================================================================

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeConnectionFailed, "connection_failed"},
		{OutcomeTimedOut, "timed_out"},
		{OutcomeMalformedBody, "malformed_body"},
		{OutcomeOtherError, "error"},
	}

	for _, tc := range tests {
		if got := tc.outcome.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSuccess},
		{"deadline", context.DeadlineExceeded, OutcomeTimedOut},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, OutcomeConnectionFailed},
		{"client timeout", ErrTimeout, OutcomeTimedOut},
		{"client not running", ErrNotRunning, OutcomeConnectionFailed},
		{"generic", errors.New("boom"), OutcomeOtherError},
		{"wrapped deadline", io.ErrUnexpectedEOF, OutcomeOtherError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyErr(tc.err); got != tc.want {
				t.Errorf("classifyErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

// =============================================================================
// RESULT TESTS
// =============================================================================

func TestResult_TokensPerSecond(t *testing.T) {
	r := &Result{TokenCount: 100, Duration: 2 * time.Second}
	if got := r.TokensPerSecond(); got != 50.0 {
		t.Errorf("TokensPerSecond() = %f, want 50", got)
	}

	r = &Result{TokenCount: 100}
	if got := r.TokensPerSecond(); got != 0 {
		t.Errorf("TokensPerSecond() with zero duration = %f, want 0", got)
	}
}

func TestResult_Succeeded(t *testing.T) {
	if !(&Result{Outcome: OutcomeSuccess}).Succeeded() {
		t.Error("success result should report Succeeded")
	}
	if (&Result{Outcome: OutcomeTimedOut}).Succeeded() {
		t.Error("timed out result should not report Succeeded")
	}
}
