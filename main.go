// uncensored - terminal client for the Uncensored AI chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AppleLamps/testing-uncensored/internal/cli"
	"github.com/AppleLamps/testing-uncensored/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	app, err := cli.NewApp(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	switch cmd {
	case cli.CmdTUI:
		runTUI(app)
	case cli.CmdChat:
		exitOnError(cli.HandleChat(app, args))
	case cli.CmdSetup:
		exitOnError(cli.HandleSetup(app, args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(app, args))
	case cli.CmdExport:
		exitOnError(cli.HandleExport(app, args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(app, args))
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

func runTUI(app *cli.App) {
	// The alternate screen owns the terminal; route log output away
	// from it.
	log.SetOutput(io.Discard)

	program := tea.NewProgram(
		ui.New(ui.Deps{
			Store:  app.Store,
			Engine: app.Engine,
			KV:     app.KV,
			Config: app.Config,
		}),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
