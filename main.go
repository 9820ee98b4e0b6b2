// paychat - a conversational payment assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jeranaias/paychat/internal/cli"
	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return nil
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		if args.Unknown != "" {
			return fmt.Errorf("unknown command %q", args.Unknown)
		}
		return nil
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	cfg := config.Global().Clone()
	args.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobal(cfg)

	logger, closer, err := openLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("paychat starting", "command", cmd.String(), "version", Version, "backend", cfg.Backend.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdChat:
		return cli.HandleChat(ctx, cfg, logger, args)
	case cli.CmdStatus:
		return cli.HandleStatus(ctx, cfg, logger, args, os.Stdout)
	case cli.CmdSandbox:
		return cli.HandleSandbox(ctx, cfg, logger, args, os.Stdout)
	case cli.CmdConfig:
		return cli.HandleConfig(cfg, args, os.Stdout)
	default:
		if !cli.CanRunTUI() {
			logger.Info("no terminal, using line mode")
			return cli.HandleChat(ctx, cfg, logger, args)
		}
		return cli.RunTUI(ctx, cfg, logger, args)
	}
}

// openLogger sends logs to the log file, except for the sandbox which is a
// foreground server and logs to stderr.
func openLogger(cmd cli.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cmd == cli.CmdSandbox {
		return logging.New(os.Stderr, cfg.Log.Level), io.NopCloser(nil), nil
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(path, cfg.Log.Level)
}
