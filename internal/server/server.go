// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package server provides the web front end: a small HTTP server that
// serves the demo pages and proxies browser requests to the local
// Ollama instance.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ollamalab/ollamalab/internal/chat"
	"github.com/ollamalab/ollamalab/internal/config"
	"github.com/ollamalab/ollamalab/internal/ollama"
)

//go:embed web/*.html
var webFS embed.FS

// pages served from the embedded templates, each rendered inside the
// shared layout.
var pageNames = []string{"index", "streaming", "chat", "prompting", "advanced"}

// =============================================================================
// SERVER
// =============================================================================

// Server is the web front end. It holds no per-user state: chat history
// travels with each request so the browser owns the conversation.
type Server struct {
	cfg    *config.Config
	client *ollama.Client
	log    *logrus.Logger
	stats  *Stats
	pages  map[string]*template.Template
	mux    *http.ServeMux
}

// New creates a server backed by the given client.
func New(cfg *config.Config, client *ollama.Client, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logrus.New()
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(webFS, "web/layout.html", "web/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	s := &Server{
		cfg:    cfg,
		client: client,
		log:    log,
		stats:  NewStats(),
		pages:  pages,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage("index"))
	s.mux.HandleFunc("GET /streaming", s.handlePage("streaming"))
	s.mux.HandleFunc("GET /chat", s.handlePage("chat"))
	s.mux.HandleFunc("GET /prompting", s.handlePage("prompting"))
	s.mux.HandleFunc("GET /advanced", s.handlePage("advanced"))

	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /api/generate/stream", s.handleGenerateStream)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/models", s.handleModels)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

// Handler returns the full handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux,
		Recover(s.log),
		RequestID(),
		Logging(s.log),
		RateLimit(20, 40),
		MaxBytes(1<<20),
	)
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.WebPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// PAGES
// =============================================================================

type pageData struct {
	Title  string
	Active string
	Model  string
}

var pageTitles = map[string]string{
	"index":     "Basic Generation",
	"streaming": "Streaming",
	"chat":      "Chat",
	"prompting": "Prompt Engineering",
	"advanced":  "Parameter Tuning",
}

func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			Title:  pageTitles[name],
			Active: name,
			Model:  s.cfg.DefaultModel,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
			s.log.WithError(err).WithField("page", name).Error("render failed")
		}
	}
}

// =============================================================================
// API TYPES
// =============================================================================

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	System      string   `json:"system,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type generateReply struct {
	Response string  `json:"response"`
	Tokens   int     `json:"tokens"`
	Duration float64 `json:"duration"`
	Status   string  `json:"status"`
}

type chatRequest struct {
	Message string          `json:"message"`
	System  string          `json:"system,omitempty"`
	Model   string          `json:"model,omitempty"`
	History []chat.Exchange `json:"history"`
}

type chatReply struct {
	Response string          `json:"response"`
	History  []chat.Exchange `json:"history"`
	Status   string          `json:"status"`
}

type errorReply struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// =============================================================================
// API HANDLERS
// =============================================================================

// options assembles sampling options from the optional request fields,
// falling back to the configured defaults.
func (s *Server) options(req generateRequest) *ollama.Options {
	opts := s.cfg.DefaultOptions()
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		opts.TopP = *req.TopP
	}
	if req.TopK != nil {
		opts.TopK = *req.TopK
	}
	if req.NumPredict != nil {
		opts.NumPredict = *req.NumPredict
	}
	return opts
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid JSON body", Status: "error"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "prompt is required", Status: "error"})
		return
	}

	result, err := s.client.Generate(r.Context(), ollama.GenerateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: s.options(req),
	})
	if err != nil {
		s.stats.RecordFailure()
		// Upstream failures still return 200 with an error status so
		// the page script can show the message inline.
		writeJSON(w, http.StatusOK, errorReply{Error: upstreamMessage(err), Status: "error"})
		return
	}

	s.stats.RecordSuccess(result.TokenCount)
	writeJSON(w, http.StatusOK, generateReply{
		Response: result.Text,
		Tokens:   result.TokenCount,
		Duration: result.Seconds(),
		Status:   "success",
	})
}

// handleGenerateStream forwards fragments to the browser as NDJSON,
// flushing after every line so tokens appear as they arrive.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid JSON body", Status: "error"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "prompt is required", Status: "error"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorReply{Error: "streaming unsupported", Status: "error"})
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	enc := json.NewEncoder(w)
	result, err := s.client.GenerateStream(r.Context(), ollama.GenerateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Options: s.options(req),
	}, func(f ollama.Fragment) {
		enc.Encode(map[string]any{"response": f.Response, "done": false})
		flusher.Flush()
	})
	if err != nil {
		s.stats.RecordFailure()
		enc.Encode(map[string]any{"error": upstreamMessage(err), "done": true})
		flusher.Flush()
		return
	}

	s.stats.RecordSuccess(result.TokenCount)
	enc.Encode(map[string]any{
		"done":     true,
		"tokens":   result.TokenCount,
		"duration": result.Seconds(),
	})
	flusher.Flush()
}

// handleChat runs one conversation turn. The browser carries the
// history; each request rebuilds a bot from it, so the server stays
// stateless across requests.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid JSON body", Status: "error"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "message is required", Status: "error"})
		return
	}

	bot := chat.NewBot(s.client, req.Model)
	if req.System != "" {
		bot.SetSystemPrompt(req.System)
	}
	bot.SetHistory(req.History)

	result, err := bot.Send(r.Context(), req.Message, nil)
	if err != nil {
		s.stats.RecordFailure()
		writeJSON(w, http.StatusOK, errorReply{Error: upstreamMessage(err), Status: "error"})
		return
	}

	s.stats.RecordSuccess(result.TokenCount)
	writeJSON(w, http.StatusOK, chatReply{
		Response: strings.TrimSpace(result.Text),
		History:  bot.History(),
		Status:   "success",
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.client.ListModels(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, errorReply{Error: err.Error(), Status: "error"})
		return
	}

	type modelEntry struct {
		Name string  `json:"name"`
		Size float64 `json:"size"`
	}
	entries := make([]modelEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, modelEntry{Name: m.Name, Size: m.SizeGB()})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models": entries,
		"status": "success",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := s.client.CheckRunning(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"online": false,
			"url":    s.cfg.OllamaURL,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"online": true,
		"url":    s.cfg.OllamaURL,
		"model":  s.cfg.DefaultModel,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// upstreamMessage turns a client error into a message with an
// actionable hint where one exists.
func upstreamMessage(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return err.Error() + " (is Ollama running? start it with: ollama serve)"
	case ollama.IsTimeout(err):
		return err.Error() + " (the model may still be loading; try again)"
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
