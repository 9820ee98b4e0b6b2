// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/paychat/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdStatus
	CmdSandbox
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdStatus:
		return "status"
	case CmdSandbox:
		return "sandbox"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose   bool
	Ephemeral bool
	BaseURL   string
	Plan      string

	// Command-specific
	JSON       bool
	Addr       string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Unknown is set when the command word was not recognized.
	Unknown string
}

const usageText = `paychat - assistente virtual de pagamentos no terminal

Usage:
  paychat                          Start the TUI (default)
  paychat chat                     Line-mode chat
  paychat status [--json]          Check the last transaction
  paychat sandbox [--addr ADDR]    Run the local sandbox backend
  paychat config [show|get|set|path] [KEY] [VALUE]
  paychat version

Global flags:
  -v, --verbose       Debug logging
  --ephemeral         Keep nothing on disk
  --base-url URL      Backend base URL
  --plan ID           Plan for this session (basico, premium)

Environment:
  PAYCHAT_HOME, PAYCHAT_BASE_URL, PAYCHAT_PLAN, PAYCHAT_POLL_INTERVAL,
  PAYCHAT_EPHEMERAL, PAYCHAT_THEME, PAYCHAT_LOG_LEVEL (a .env file is read first)

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "paychat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
func Parse(raw []string) (Command, Args) {
	remaining, args := parseGlobalFlags(raw)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	p := NewArgParser(remaining[1:], "json")

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "chat":
		return CmdChat, args
	case "status", "s":
		args.JSON = p.BoolFlag("json")
		return CmdStatus, args
	case "sandbox", "serve":
		args.Addr = p.Flag("addr")
		return CmdSandbox, args
	case "config":
		args.Subcommand = p.Subcommand()
		args.ConfigKey = p.Positional(1)
		args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
		args.JSON = p.BoolFlag("json")
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		args.Unknown = cmd
		return CmdHelp, args
	}
}

// parseGlobalFlags extracts global flags and returns what is left.
func parseGlobalFlags(raw []string) ([]string, Args) {
	var (
		remaining []string
		args      Args
	)
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--ephemeral":
			args.Ephemeral = true
		case arg == "--base-url" && i+1 < len(raw):
			i++
			args.BaseURL = raw[i]
		case strings.HasPrefix(arg, "--base-url="):
			args.BaseURL = strings.TrimPrefix(arg, "--base-url=")
		case arg == "--plan" && i+1 < len(raw):
			i++
			args.Plan = raw[i]
		case strings.HasPrefix(arg, "--plan="):
			args.Plan = strings.TrimPrefix(arg, "--plan=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}

// Apply copies global flag overrides onto cfg. Flags win over the config
// file and the environment.
func (a Args) Apply(cfg *config.Config) {
	if a.Verbose {
		cfg.Log.Level = "debug"
	}
	if a.Ephemeral {
		cfg.Storage.Ephemeral = true
	}
	if a.BaseURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(a.BaseURL, "/")
	}
	if a.Plan != "" {
		cfg.Payment.DefaultPlan = strings.ToLower(a.Plan)
	}
}
