// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/ui/styles"
	"github.com/jeranaias/paychat/internal/util"
)

// HeaderInfo is what the title bar shows.
type HeaderInfo struct {
	PlanID        string
	TransactionID string
	Backend       string
}

// RenderHeader renders the title bar.
func RenderHeader(info HeaderInfo, theme *styles.Theme, width int) string {
	left := theme.HeaderTitle.Render("Assistente Virtual de Pagamentos")

	var meta []string
	if p, ok := model.GetPlan(info.PlanID); ok {
		meta = append(meta, "Plano "+p.Name+" "+p.Price())
	}
	if info.TransactionID != "" {
		meta = append(meta, "Transação "+util.MiddleEllipsis(info.TransactionID, 20))
	}
	text := strings.Join(meta, " | ")

	// The metadata is shortened first; the title only goes when nothing
	// useful of the metadata would remain.
	avail := width - lipgloss.Width(left) - 3
	if avail < 8 {
		return theme.Header.Width(width).Render(left)
	}
	if util.StringWidth(text) > avail {
		text = util.TruncateWidth(text, avail)
	}
	right := theme.HeaderSubtitle.Render(text)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// Hint is one key binding shown in the status bar.
type Hint struct {
	Key  string
	Desc string
}

// RenderStatusBar renders key hints, dropping the last ones that do not fit.
func RenderStatusBar(hints []Hint, theme *styles.Theme, width int) string {
	var b strings.Builder
	used := 2
	for i, h := range hints {
		item := theme.ShortcutKey.Render(h.Key) + " " + theme.ShortcutDesc.Render(h.Desc)
		w := lipgloss.Width(item) + 2
		if width > 0 && used+w > width {
			break
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(item)
		used += w
	}
	return theme.StatusBar.Width(width).Render(b.String())
}
