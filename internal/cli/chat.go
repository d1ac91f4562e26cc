// Copyright (c) 2025 The ollamalab authors
// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ollamalab/ollamalab/internal/chat"
	"github.com/ollamalab/ollamalab/internal/ollama"
	"github.com/ollamalab/ollamalab/internal/ui"
)

var (
	systemPromptFlag string
	renderMarkdown   bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Lesson 3: interactive multi-turn chat",
	Long: `An interactive REPL that keeps conversation history, so the model
remembers earlier turns. Type /help inside the session for commands.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&systemPromptFlag, "system", "s", "", "system prompt (personality)")
	chatCmd.Flags().BoolVar(&renderMarkdown, "render", false, "render answers as markdown instead of streaming raw text")
	rootCmd.AddCommand(chatCmd)
}

// historyPath is where the REPL input history is persisted between
// sessions. Separate from conversation history, which is in-memory
// only.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ollamalab", "history")
}

func runChat(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := client.CheckRunning(ctx); err != nil {
		fmt.Println(ui.ErrorStyle.Render("Ollama is not reachable: " + err.Error()))
		return err
	}

	bot := chat.NewBot(client, "")
	if systemPromptFlag != "" {
		bot.SetSystemPrompt(systemPromptFlag)
	}

	fmt.Println(ui.TitleStyle.Render("Lesson 3: Chat"))
	fmt.Println(ui.LabelStyle.Render("Model: " + bot.Model()))
	fmt.Println(ui.SubtleStyle.Render("Type /help for commands, /quit to leave."))
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return
			}
			if f, err := os.Create(path); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		input, err := line.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := chatCommand(bot, input); quit {
				return nil
			}
			continue
		}

		fmt.Print(ui.LabelStyle.Render("bot> "))

		// With --render the answer is collected silently and printed
		// once as formatted markdown; otherwise it streams raw.
		var cb ollama.FragmentCallback
		if !renderMarkdown {
			cb = func(frag ollama.Fragment) {
				fmt.Print(frag.Response)
			}
		}

		result, err := bot.Send(ctx, input, cb)
		if renderMarkdown && result != nil && result.Text != "" {
			fmt.Print(ui.RenderMarkdown(strings.TrimSpace(result.Text)))
		}
		fmt.Println()
		if err != nil {
			fmt.Println(ui.ErrorStyle.Render("turn failed: " + err.Error()))
			fmt.Println(ui.SubtleStyle.Render("The failed turn was not recorded; just ask again."))
		}
		fmt.Println()
	}
}

// chatCommand handles slash commands; returns true to end the session.
func chatCommand(bot *chat.Bot, input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/clear":
		bot.Clear()
		fmt.Println(ui.SuccessStyle.Render("Conversation history cleared."))
	case "/history":
		exchanges := bot.History()
		if len(exchanges) == 0 {
			fmt.Println(ui.SubtleStyle.Render("No conversation yet."))
			break
		}
		for i, ex := range exchanges {
			fmt.Printf("%s %s\n", ui.LabelStyle.Render(fmt.Sprintf("[%d] you:", i+1)), ex.User)
			fmt.Printf("%s %s\n", ui.LabelStyle.Render("    bot:"), ex.Assistant)
		}
	case "/system":
		if rest == "" {
			fmt.Println(ui.LabelStyle.Render("System prompt: ") + bot.SystemPrompt())
			break
		}
		bot.SetSystemPrompt(rest)
		bot.Clear()
		fmt.Println(ui.SuccessStyle.Render("System prompt updated; history cleared."))
	case "/help":
		fmt.Println("  /quit          leave the chat")
		fmt.Println("  /clear         forget the conversation so far")
		fmt.Println("  /history       show the conversation so far")
		fmt.Println("  /system [text] show or replace the system prompt")
	default:
		fmt.Println(ui.WarningStyle.Render("Unknown command " + cmd + "; try /help"))
	}

	return false
}
