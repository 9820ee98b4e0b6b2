// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/paychat/internal/format"
	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/ui/styles"
)

// MarkdownRenderer turns assistant markdown into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// RenderMessage renders one transcript message. Assistant text goes through
// md when it is non-nil; user text is shown verbatim.
func RenderMessage(m model.Message, theme *styles.Theme, width int, md MarkdownRenderer, timestamps bool) string {
	label := theme.AssistantLabel.Render(m.Role.DisplayName())
	bubble := theme.AssistantBubble
	if m.IsUser() {
		label = theme.UserLabel.Render(m.Role.DisplayName())
		bubble = theme.UserBubble
	}
	if timestamps {
		label += " " + theme.Timestamp.Render(m.FormattedTime())
	}

	body := m.Text
	if m.IsAssistant() {
		body = AssistantBody(m, md)
	}

	bubbleWidth := width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	return label + "\n" + bubble.Width(bubbleWidth).Render(body)
}

// AssistantBody turns the formatted markup of an assistant message back
// into terminal text: Markdown through md when it is non-nil, plain text
// otherwise.
func AssistantBody(m model.Message, md MarkdownRenderer) string {
	if m.Markup == "" {
		return m.Text
	}
	if md != nil {
		if out, err := md.Render(format.Markdown(m.Markup)); err == nil {
			return trimBlankLines(out)
		}
	}
	return format.Plain(m.Markup)
}

// RenderComposing renders the "assistant is composing" indicator.
func RenderComposing(theme *styles.Theme, spinnerFrame string) string {
	return theme.Composing.Render(spinnerFrame + " Assistente está digitando...")
}

func trimBlankLines(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "\n"), "\n ")
}
