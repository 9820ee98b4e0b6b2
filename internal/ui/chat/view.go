// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// now is replaced in tests.
var now = time.Now

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Iniciando..."
	}

	parts := []string{m.header, m.viewport.View()}
	if m.panel != "" {
		parts = append(parts, m.panel)
	}
	if m.toasts != "" {
		parts = append(parts, m.toasts)
	}
	parts = append(parts, m.inputView(), m.status)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// inputView renders the composer.
func (m Model) inputView() string {
	style := m.theme.InputContainer
	if m.focus == focusChat {
		style = m.theme.InputFocused
	}
	return style.Width(m.width - 2).Render(m.input.View())
}
