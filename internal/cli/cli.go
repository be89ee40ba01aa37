// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command line surface: argument parsing,
// the interactive REPL, setup, session listing and HTML export.
package cli

import (
	"fmt"
	"os"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the requested subcommand.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSetup
	CmdSessions
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed command line options.
type Args struct {
	// Model overrides the configured model for this run.
	Model string
	// NoStream forces one-shot completions.
	NoStream bool
	// Quiet suppresses banners and inline status.
	Quiet bool
	// Output is the destination path for export.
	Output string
	// Rest holds remaining positional arguments.
	Rest []string
}

// Parse reads os.Args and returns the command plus its options.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	if len(argv) == 0 {
		return CmdTUI, Args{}
	}

	cmd := CmdTUI
	switch argv[0] {
	case "tui":
		cmd = CmdTUI
		argv = argv[1:]
	case "chat":
		cmd = CmdChat
		argv = argv[1:]
	case "setup":
		cmd = CmdSetup
		argv = argv[1:]
	case "sessions", "session", "list":
		cmd = CmdSessions
		argv = argv[1:]
	case "export":
		cmd = CmdExport
		argv = argv[1:]
	case "config":
		cmd = CmdConfig
		argv = argv[1:]
	case "version", "-v", "--version":
		return CmdVersion, Args{}
	case "help", "-h", "--help":
		return CmdHelp, Args{}
	}

	return cmd, parseFlags(argv)
}

// parseFlags handles the shared flag set. Unknown flags are ignored
// rather than fatal; positional arguments are collected in Rest.
func parseFlags(argv []string) Args {
	var args Args
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-m", "--model":
			if i+1 < len(argv) {
				args.Model = argv[i+1]
				i++
			}
		case "--no-stream":
			args.NoStream = true
		case "-q", "--quiet":
			args.Quiet = true
		case "-o", "--output":
			if i+1 < len(argv) {
				args.Output = argv[i+1]
				i++
			}
		default:
			args.Rest = append(args.Rest, argv[i])
		}
	}
	return args
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("uncensored %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// PrintUsage prints command line help.
func PrintUsage() {
	fmt.Print(`uncensored - Uncensored AI chat client

Usage:
  uncensored [tui]              Start the terminal UI (default)
  uncensored chat               Start the interactive REPL
  uncensored setup              Configure your OpenRouter API key
  uncensored sessions           List saved conversations
  uncensored export [id]        Export a conversation as HTML
  uncensored config             Show configuration
  uncensored version            Show version
  uncensored help               Show this help

Flags:
  -m, --model NAME    Override the configured model
  --no-stream         Disable streaming responses
  -q, --quiet         Suppress banners and status lines
  -o, --output FILE   Export destination path

Chat commands (inside chat/tui):
  /new                Start a new conversation
  /list               List conversations
  /switch <n>         Switch to conversation n from /list
  /rename <title>     Rename the current conversation
  /delete             Delete the current conversation
  /export [file]      Export the current conversation as HTML
  /clear              Delete all conversations (asks twice)
  /help               Show commands
  /quit               Exit
`)
}
