// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/paychat/internal/notify"
	"github.com/jeranaias/paychat/internal/ui/styles"
)

// toastMaxWidth bounds a toast box regardless of the terminal width.
const toastMaxWidth = 60

// RenderToast renders a single toast.
func RenderToast(t notify.Toast, theme *styles.Theme, width int, now time.Time) string {
	maxWidth := toastMaxWidth
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 24 {
		maxWidth = 24
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case notify.KindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case notify.KindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case notify.KindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 6 - len(icon))

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		iconStyle.Render(icon+" "),
		messageStyle.Render(t.Message),
	)

	if secs := int(t.TimeRemaining(now).Seconds()); secs > 0 {
		hint := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
		content += "\n" + hint.Render(strconv.Itoa(secs)+"s")
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(maxWidth)

	return box.Render(content)
}

// RenderToastStack renders toasts stacked vertically, right-aligned.
func RenderToastStack(toasts []notify.Toast, theme *styles.Theme, width int, now time.Time) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, RenderToast(t, theme, width, now))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}

// ToastLine renders a toast as one plain line for line-mode output.
func ToastLine(t notify.Toast) string {
	var icon string
	switch t.Kind {
	case notify.KindError:
		icon = styles.StatusIndicators.Error
	case notify.KindWarning:
		icon = styles.StatusIndicators.Warning
	case notify.KindSuccess:
		icon = styles.StatusIndicators.Success
	default:
		icon = styles.StatusIndicators.Info
	}
	return strings.TrimSpace(icon + " " + t.Message)
}
