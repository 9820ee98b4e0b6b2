// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/paychat/internal/config"
)

// =============================================================================
// STATE MESSAGES
// =============================================================================

// RefreshMsg signals that the transcript, the payment panel or the toasts
// changed and the screen must be redrawn.
type RefreshMsg struct{}

// ToastTickMsg drives toast expiry.
type ToastTickMsg time.Time

// ConfigReloadedMsg carries a configuration reloaded from disk. It is sent
// with tea.Program.Send by the config watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// StatusDoneMsg reports the end of a status check started from the panel.
type StatusDoneMsg struct {
	Err error
}

// SubmitDoneMsg reports the end of a card submission.
type SubmitDoneMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

const toastTickInterval = 250 * time.Millisecond

// toastTick schedules the next ToastTickMsg.
func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg(t)
	})
}

// waitForRefresh blocks until a state change is signalled on ch. It is
// re-armed after every RefreshMsg so at most one waiter exists.
func waitForRefresh(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ch:
			return RefreshMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
