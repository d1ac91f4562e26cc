// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

// Package chat maintains multi-turn conversation history and assembles
// the full prompt sent to the generation endpoint.
package chat

import (
	"context"
	"strings"

	"github.com/ollamalab/ollamalab/internal/ollama"
)

// DefaultSystemPrompt is used when a bot is created without one.
const DefaultSystemPrompt = "You are a helpful assistant. Provide clear and concise answers."

// Exchange is one completed user/assistant turn.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Bot is a chatbot that keeps conversation history in memory and
// serializes it into the prompt for each turn. History is a simple
// ordered list of exchanges; it is appended to only after a turn
// completes successfully, and never persisted. Not safe for concurrent
// use.
type Bot struct {
	client       *ollama.Client
	model        string
	systemPrompt string
	options      *ollama.Options
	history      []Exchange
}

// NewBot creates a bot talking to the given client. An empty model
// falls back to the client's default.
func NewBot(client *ollama.Client, model string) *Bot {
	return &Bot{
		client:       client,
		model:        model,
		systemPrompt: DefaultSystemPrompt,
	}
}

// SetSystemPrompt sets the system prompt (personality/behavior).
func (b *Bot) SetSystemPrompt(prompt string) {
	b.systemPrompt = prompt
}

// SystemPrompt returns the current system prompt.
func (b *Bot) SystemPrompt() string {
	return b.systemPrompt
}

// SetOptions sets sampling options applied to every turn.
func (b *Bot) SetOptions(opts *ollama.Options) {
	b.options = opts
}

// Model returns the model the bot sends requests to.
func (b *Bot) Model() string {
	if b.model != "" {
		return b.model
	}
	return b.client.DefaultModel()
}

// BuildPrompt serializes the system prompt, the conversation history,
// and the latest user message into the full prompt for the generation
// endpoint.
func (b *Bot) BuildPrompt(userMessage string) string {
	var sb strings.Builder

	sb.WriteString("System: ")
	sb.WriteString(b.systemPrompt)
	sb.WriteString("\n\n")

	for _, ex := range b.history {
		sb.WriteString("User: ")
		sb.WriteString(ex.User)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(ex.Assistant)
		sb.WriteString("\n\n")
	}

	sb.WriteString("User: ")
	sb.WriteString(userMessage)
	sb.WriteString("\nAssistant:")

	return sb.String()
}

// Send submits a user message, streaming the response through cb, and
// records the completed exchange. Failed turns are not added to
// history, so a retry re-sends the same context.
func (b *Bot) Send(ctx context.Context, userMessage string, cb ollama.FragmentCallback) (*ollama.Result, error) {
	req := ollama.GenerateRequest{
		Model:   b.model,
		Prompt:  b.BuildPrompt(userMessage),
		Options: b.options,
	}

	result, err := b.client.GenerateStream(ctx, req, cb)
	if err != nil {
		return result, err
	}

	b.history = append(b.history, Exchange{
		User:      userMessage,
		Assistant: strings.TrimSpace(result.Text),
	})

	return result, nil
}

// Clear removes all conversation history.
func (b *Bot) Clear() {
	b.history = nil
}

// History returns a copy of the conversation history in order.
func (b *Bot) History() []Exchange {
	out := make([]Exchange, len(b.history))
	copy(out, b.history)
	return out
}

// SetHistory replaces the conversation history, e.g. when the history
// is carried by the caller between stateless web requests.
func (b *Bot) SetHistory(history []Exchange) {
	b.history = make([]Exchange, len(history))
	copy(b.history, history)
}

// Len returns the number of completed exchanges.
func (b *Bot) Len() int {
	return len(b.history)
}
