// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/ui/chat"
	"github.com/jeranaias/paychat/internal/ui/styles"
)

// RunTUI runs the full-screen UI until the user quits.
func RunTUI(ctx context.Context, cfg *config.Config, logger *slog.Logger, args Args) error {
	sess, err := OpenSession(cfg, logger, args)
	if err != nil {
		return err
	}
	defer sess.Close()

	stored, ok := sess.Prefs.DarkTheme()
	theme := styles.NewTheme(styles.ResolveDark(cfg.UI.Theme, stored, ok))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sess.Start(ctx)

	p := tea.NewProgram(
		chat.New(ctx, sess, cfg, theme),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	watchConfig(ctx, logger, func(c *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: c})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	logger.Info("tui closed", "session", sess.ID, "duration", sess.Duration().String())
	return nil
}

// watchConfig reloads the config file on change until ctx ends. A missing
// watcher only costs hot reload.
func watchConfig(ctx context.Context, logger *slog.Logger, onChange func(*config.Config)) {
	if err := config.EnsureConfigDir(); err != nil {
		logger.Warn("config watch disabled", "error", err)
		return
	}
	path, err := config.ActivePath()
	if err != nil {
		logger.Warn("config watch disabled", "error", err)
		return
	}
	w, err := config.NewWatcher(path, onChange)
	if err != nil {
		logger.Warn("config watch disabled", "error", err)
		return
	}
	go w.Run(ctx)
}
