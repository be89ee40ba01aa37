// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL for the "uncensored chat" command.
//
// USABILITY: Markdown rendering and input history for better CLI experience
//
// Interactive commands (during chat):
//   /new                Start a new conversation
//   /list               List conversations
//   /switch <n>         Switch to conversation n from /list
//   /rename <title>     Rename the current conversation
//   /delete             Delete the current conversation
//   /export [file]      Export the current conversation as HTML
//   /clear              Delete all conversations (asks twice)
//   /help, /h           Show commands
//   /quit, /q           Exit
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/AppleLamps/testing-uncensored/internal/config"
	"github.com/AppleLamps/testing-uncensored/internal/engine"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders assistant replies for terminal display.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for the terminal, falling back to the
// raw text if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history loaded from disk.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists history with owner-only permissions.
func (c *ChatCLI) saveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive REPL against the active conversation.
func HandleChat(app *App, args Args) error {
	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		printWelcome(app)
	}
	if !app.Client.IsConfigured() {
		fmt.Fprintln(os.Stderr, warningStyle.Render(
			"No API key configured. Run 'uncensored setup' to add one."))
	}

	// First Ctrl+C cancels the in-flight generation, not the REPL.
	var cancelCurrent context.CancelFunc
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if cancelCurrent != nil {
				cancelCurrent()
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D both exit cleanly.
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := handleSlashCommand(app, input, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancelCurrent = cancel
		processMessage(ctx, app, line)
		cancelCurrent = nil
		cancel()
	}
}

// processMessage runs one turn and prints the reply. Errors surface as
// the assistant-voice message the presentation contract defines.
func processMessage(ctx context.Context, app *App, input string) {
	useMarkdown := IsStdoutTTY()

	fmt.Println()
	var streamed bool
	reply, err := app.Engine.Send(ctx, app.Store.ActiveID(), input, nil, func(token string) {
		// Stream raw tokens; markdown is re-rendered whole afterwards.
		if !useMarkdown {
			fmt.Print(token)
			streamed = true
		}
	})

	if err != nil {
		var sendErr *engine.SendError
		if errors.As(err, &sendErr) {
			if sendErr.Kind == engine.KindValidation {
				return
			}
			if streamed {
				fmt.Println()
			}
			fmt.Println(errorStyle.Render(sendErr.UserMessage()))
			// A partial reply was persisted; show it rendered.
			if reply != nil && useMarkdown {
				fmt.Print(renderMarkdown(reply.Content))
			}
			return
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}

	if useMarkdown {
		fmt.Print(renderMarkdown(reply.Content))
	} else if !streamed {
		fmt.Print(reply.Content)
	}
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands. Returns false to exit.
func handleSlashCommand(app *App, input *ChatCLI, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/new", "/n":
		conv := app.Store.Create()
		fmt.Printf("%s %s\n", commandStyle.Render("[New]"), conv.GetTitle())
		return true, nil

	case "/list", "/l":
		printConversationList(app)
		return true, nil

	case "/switch", "/s":
		return true, switchConversation(app, rest)

	case "/rename", "/r":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /rename <title>")
		}
		title := strings.Join(rest, " ")
		if err := app.Store.Rename(app.Store.ActiveID(), title); err != nil {
			return true, err
		}
		fmt.Printf("%s %s\n", commandStyle.Render("[Renamed]"), app.Store.Active().GetTitle())
		return true, nil

	case "/delete", "/d":
		return true, deleteActiveConversation(app, input)

	case "/export", "/e":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		return true, exportActiveConversation(app, path)

	case "/clear":
		return true, clearAllConversations(app, input)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func printConversationList(app *App) {
	activeID := app.Store.ActiveID()
	for i, conv := range app.Store.List() {
		marker := " "
		title := conv.GetTitle()
		if conv.ID == activeID {
			marker = commandStyle.Render(">")
			title = commandStyle.Render(title)
		}
		fmt.Printf("%s %2d. %s %s\n", marker, i+1, title,
			infoStyle.Render(fmt.Sprintf("(%d messages)", conv.MessageCount())))
	}
}

func switchConversation(app *App, rest []string) error {
	if len(rest) == 0 {
		return fmt.Errorf("usage: /switch <number from /list>")
	}
	list := app.Store.List()
	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 1 || n > len(list) {
		// Fall back to treating the argument as an ID.
		if err := app.Store.SwitchTo(rest[0]); err != nil {
			return fmt.Errorf("no conversation %q", rest[0])
		}
	} else if err := app.Store.SwitchTo(list[n-1].ID); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Switched]"), app.Store.Active().GetTitle())
	return nil
}

func deleteActiveConversation(app *App, input *ChatCLI) error {
	conv := app.Store.Active()
	if !confirm(input, fmt.Sprintf("Delete %q? [y/N] ", conv.GetTitle())) {
		return nil
	}
	if err := app.Store.Delete(conv.ID); err != nil {
		return err
	}
	fmt.Printf("%s now on %s\n", commandStyle.Render("[Deleted]"), app.Store.Active().GetTitle())
	return nil
}

// clearAllConversations asks twice. Everything goes, so both answers
// must be yes.
func clearAllConversations(app *App, input *ChatCLI) error {
	if !confirm(input, "Delete ALL conversations? [y/N] ") {
		return nil
	}
	if !confirm(input, warningStyle.Render("This cannot be undone. Really delete everything? [y/N] ")) {
		return nil
	}
	app.Store.ClearAll()
	fmt.Println(commandStyle.Render("[All conversations deleted]"))
	return nil
}

func confirm(input *ChatCLI, prompt string) bool {
	answer, err := input.line.Prompt(prompt)
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// =============================================================================
// DISPLAY
// =============================================================================

func printWelcome(app *App) {
	conv := app.Store.Active()
	fmt.Println()
	fmt.Println(welcomeStyle.Render("Uncensored AI"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), commandStyle.Render(app.Client.Model()))
	fmt.Printf("%s %s (%d messages)\n", infoStyle.Render("Conversation:"),
		conv.GetTitle(), conv.MessageCount())
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println(infoStyle.Render(`Commands:
  /new                Start a new conversation
  /list               List conversations
  /switch <n>         Switch to conversation n from /list
  /rename <title>     Rename the current conversation
  /delete             Delete the current conversation
  /export [file]      Export the current conversation as HTML
  /clear              Delete all conversations (asks twice)
  /help               Show this help
  /quit               Exit`))
}
