// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model of the paychat TUI.
//
// The model is a thin view over a session.Session: the transcript renderer,
// the payment controller and the toast manager own all state, and the model
// redraws when any of them reports a change. Network calls run as tea.Cmds
// and report back through result messages.
//
// # Layout
//
//	header      plan and last transaction
//	viewport    conversation (glamour-rendered assistant text)
//	panel       payment panel, when visible
//	toasts      transient notifications
//	input       message composer
//	status bar  key hints for the focused area
package chat
