// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ollamalab/ollamalab/internal/ollama"
)

func newTestBot(t *testing.T, handler http.HandlerFunc) *Bot {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      srv.URL,
		DefaultModel: "test-model",
	})
	return NewBot(client, "")
}

func TestBuildPrompt_Empty(t *testing.T) {
	bot := NewBot(ollama.NewClient(), "neural-chat")

	prompt := bot.BuildPrompt("Hello")

	want := "System: " + DefaultSystemPrompt + "\n\nUser: Hello\nAssistant:"
	if prompt != want {
		t.Errorf("BuildPrompt() = %q, want %q", prompt, want)
	}
}

func TestBuildPrompt_WithHistory(t *testing.T) {
	bot := NewBot(ollama.NewClient(), "neural-chat")
	bot.SetSystemPrompt("Be terse.")
	bot.SetHistory([]Exchange{
		{User: "What is Go?", Assistant: "A language."},
		{User: "Who made it?", Assistant: "Google."},
	})

	prompt := bot.BuildPrompt("When?")

	want := "System: Be terse.\n\n" +
		"User: What is Go?\nAssistant: A language.\n\n" +
		"User: Who made it?\nAssistant: Google.\n\n" +
		"User: When?\nAssistant:"
	if prompt != want {
		t.Errorf("BuildPrompt() = %q, want %q", prompt, want)
	}
}

func TestSend_RecordsExchange(t *testing.T) {
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"Paris"}` + "\n"))
		w.Write([]byte(`{"response":".","done":true,"eval_count":2}` + "\n"))
	})

	result, err := bot.Send(context.Background(), "Capital of France?", nil)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if result.Text != "Paris." {
		t.Errorf("Text = %q", result.Text)
	}

	history := bot.History()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}

	if history[0].User != "Capital of France?" || history[0].Assistant != "Paris." {
		t.Errorf("exchange = %+v", history[0])
	}
}

func TestSend_SecondTurnIncludesFirst(t *testing.T) {
	var lastPrompt string
	bot := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		if err := jsonDecode(r, &req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lastPrompt = req.Prompt
		w.Write([]byte(`{"response":"ok","done":true}` + "\n"))
	})

	if _, err := bot.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := bot.Send(context.Background(), "second", nil); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if !strings.Contains(lastPrompt, "User: first\nAssistant: ok") {
		t.Errorf("second prompt is missing the first exchange: %q", lastPrompt)
	}

	if !strings.HasSuffix(lastPrompt, "User: second\nAssistant:") {
		t.Errorf("second prompt does not end with the new message: %q", lastPrompt)
	}
}

func TestSend_FailedTurnNotRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: srv.URL})
	bot := NewBot(client, "")

	if _, err := bot.Send(context.Background(), "hello", nil); err == nil {
		t.Fatal("Send() should fail when server is unreachable")
	}

	if bot.Len() != 0 {
		t.Errorf("failed turn was recorded; history length = %d", bot.Len())
	}
}

func TestClear(t *testing.T) {
	bot := NewBot(ollama.NewClient(), "")
	bot.SetHistory([]Exchange{{User: "a", Assistant: "b"}})

	bot.Clear()

	if bot.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", bot.Len())
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	bot := NewBot(ollama.NewClient(), "")
	bot.SetHistory([]Exchange{{User: "a", Assistant: "b"}})

	h := bot.History()
	h[0].User = "mutated"

	if bot.History()[0].User != "a" {
		t.Error("History() must return a copy")
	}
}

func TestModel_FallsBackToClientDefault(t *testing.T) {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{DefaultModel: "mistral"})

	if got := NewBot(client, "").Model(); got != "mistral" {
		t.Errorf("Model() = %q, want 'mistral'", got)
	}

	if got := NewBot(client, "llama3.2").Model(); got != "llama3.2" {
		t.Errorf("Model() = %q, want 'llama3.2'", got)
	}
}

// jsonDecode decodes a request body, kept out of the test bodies for
// readability.
func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
