// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package server

import (
	"sync/atomic"
	"time"
)

// Stats tracks request counters for the /api/stats endpoint.
type Stats struct {
	started   time.Time
	requests  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
	tokens    atomic.Int64
}

// NewStats creates a zeroed counter set.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// RecordSuccess counts one completed generation and its tokens.
func (s *Stats) RecordSuccess(tokens int) {
	s.requests.Add(1)
	s.successes.Add(1)
	s.tokens.Add(int64(tokens))
}

// RecordFailure counts one failed generation.
func (s *Stats) RecordFailure() {
	s.requests.Add(1)
	s.failures.Add(1)
}

// Snapshot returns the current counters in JSON-ready form.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"uptime_secs": int64(time.Since(s.started).Seconds()),
		"requests":    s.requests.Load(),
		"successes":   s.successes.Load(),
		"failures":    s.failures.Load(),
		"tokens":      s.tokens.Load(),
	}
}
