// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollamalab/ollamalab/internal/chat"
	"github.com/ollamalab/ollamalab/internal/config"
	"github.com/ollamalab/ollamalab/internal/ollama"
)

// fakeOllama is a minimal stand-in for the upstream API.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Ollama is running")
	})

	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"neural-chat","size":4368491520}]}`)
	})

	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Stream {
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprintln(w, `{"response":"Hello"}`)
			fmt.Fprintln(w, `{"response":" world"}`)
			fmt.Fprintln(w, `{"done":true,"eval_count":2,"total_duration":1000000000}`)
			return
		}
		fmt.Fprint(w, `{"response":"Hello world","done":true,"eval_count":2,"total_duration":1000000000}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, upstream string) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.OllamaURL = upstream

	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := New(cfg, ollama.NewClientWithConfig(cfg.ClientConfig()), log)
	require.NoError(t, err)
	return srv
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/", "/streaming", "/chat", "/prompting", "/advanced"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(body), "OllamaLab", path)
	}
}

func TestUnknownPageIs404(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply generateReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))

	assert.Equal(t, "success", reply.Status)
	assert.Equal(t, "Hello world", reply.Response)
	assert.Equal(t, 2, reply.Tokens)
	assert.InDelta(t, 1.0, reply.Duration, 0.001)
}

func TestGenerate_MissingPrompt(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"prompt":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerate_UpstreamDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	srv := newTestServer(t, dead.URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	// Upstream failures surface inline, not as HTTP errors.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reply errorReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, "error", reply.Status)
	assert.NotEmpty(t, reply.Error)
}

func TestGenerateStream(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate/stream", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var text strings.Builder
	var sawDone bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var frag struct {
			Response string  `json:"response"`
			Done     bool    `json:"done"`
			Tokens   int     `json:"tokens"`
			Duration float64 `json:"duration"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &frag))
		if frag.Done {
			sawDone = true
			assert.Equal(t, 2, frag.Tokens)
		} else {
			text.WriteString(frag.Response)
		}
	}

	assert.True(t, sawDone, "stream must end with a done line")
	assert.Equal(t, "Hello world", text.String())
}

func TestChat(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"message":"hi","history":[{"user":"earlier","assistant":"reply"}]}`
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply chatReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))

	assert.Equal(t, "success", reply.Status)
	assert.Equal(t, "Hello world", reply.Response)
	require.Len(t, reply.History, 2)
	assert.Equal(t, chat.Exchange{User: "earlier", Assistant: "reply"}, reply.History[0])
	assert.Equal(t, "hi", reply.History[1].User)
}

func TestModels(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var reply struct {
		Models []struct {
			Name string  `json:"name"`
			Size float64 `json:"size"`
		} `json:"models"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))

	assert.Equal(t, "success", reply.Status)
	require.Len(t, reply.Models, 1)
	assert.Equal(t, "neural-chat", reply.Models[0].Name)
	assert.InDelta(t, 4.07, reply.Models[0].Size, 0.01)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus_Offline(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	srv := newTestServer(t, dead.URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var reply struct {
		Online bool `json:"online"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.False(t, reply.Online)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeOllama(t).URL)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/generate", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats struct {
		Requests  int64 `json:"requests"`
		Successes int64 `json:"successes"`
		Tokens    int64 `json:"tokens"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))

	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(1), stats.Successes)
	assert.Equal(t, int64(2), stats.Tokens)
}
