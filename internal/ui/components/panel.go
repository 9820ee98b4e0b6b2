// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/ui/styles"
	"github.com/jeranaias/paychat/internal/util"
)

// PanelOptions controls how the payment panel is drawn.
type PanelOptions struct {
	Width   int
	Focused bool
	// Spinner is the current frame shown next to progress views.
	Spinner string
	// Form renders the card inputs when the view is a card form.
	Form *CardForm
	// ShowQR draws PIX codes as terminal QR codes.
	ShowQR bool
}

// ActionKey returns the key that triggers a in the panel.
func ActionKey(a payment.Action) string {
	switch a {
	case payment.ActionCopyCode:
		return "c"
	case payment.ActionOpenDocument:
		return "o"
	case payment.ActionCheckStatus:
		return "s"
	case payment.ActionSubmit:
		return "enter"
	case payment.ActionRetry:
		return "r"
	case payment.ActionDismiss:
		return "x"
	default:
		return ""
	}
}

// RenderPaymentPanel renders v. An invisible view renders as "".
func RenderPaymentPanel(v payment.View, theme *styles.Theme, opts PanelOptions) string {
	if !v.Visible() {
		return ""
	}

	width := opts.Width
	if width <= 0 {
		width = 60
	}
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	wrap := lipgloss.NewStyle().Width(inner)

	var parts []string

	title := v.Title
	titleStyle := theme.PanelTitle
	switch v.Kind {
	case payment.ViewApproved:
		titleStyle = theme.SuccessStyle
		title = styles.StatusIndicators.Success + " " + title
	case payment.ViewDeclined, payment.ViewFailed:
		titleStyle = theme.ErrorStyle
		title = styles.StatusIndicators.Error + " " + title
	case payment.ViewProgress:
		if opts.Spinner != "" {
			title = opts.Spinner + " " + title
		}
	}
	parts = append(parts, titleStyle.Render(util.TruncateWidth(title, inner)))

	for _, l := range v.Lines {
		parts = append(parts, theme.PanelLine.Render(wrap.Render(l)))
	}

	switch v.Kind {
	case payment.ViewInstantTransfer:
		if opts.ShowQR && v.Code != "" {
			if q, err := TerminalQR(v.Code); err == nil {
				parts = append(parts, theme.QR.Render(q))
			}
		}
		if v.Code != "" {
			parts = append(parts, theme.PanelCode.Render(util.MiddleEllipsis(v.Code, inner)))
		}
	case payment.ViewBankSlip:
		if v.Code != "" {
			parts = append(parts, theme.PanelCode.Render(wrap.Render(v.Code)))
		}
		if v.DocumentURL != "" {
			parts = append(parts, theme.LinkStyle.Render(util.TruncateWidth(v.DocumentURL, inner)))
		}
	case payment.ViewCardForm:
		if opts.Form != nil {
			parts = append(parts, opts.Form.View(theme, opts.Focused))
		}
	}

	if v.Reason != "" {
		parts = append(parts, theme.ErrorStyle.Render(wrap.Render("Motivo: "+v.Reason)))
	}
	if v.StatusNote != "" {
		parts = append(parts,
			theme.WarningStyle.Render(styles.StatusIndicators.Pending+" "+v.StatusNote),
			theme.PanelLine.Render("Aguardando confirmação do pagamento..."))
	}
	if v.Note != "" {
		parts = append(parts, theme.PanelLine.Italic(true).Render(wrap.Render(v.Note)))
	}

	if len(v.Actions) > 0 {
		buttons := make([]string, 0, len(v.Actions))
		for _, a := range v.Actions {
			buttons = append(buttons, theme.PanelAction.Render("["+ActionKey(a)+"] "+a.Label()))
		}
		parts = append(parts, wrap.Render(strings.Join(buttons, " ")))
	}

	box := theme.Panel
	if opts.Focused {
		box = theme.PanelFocused
	}
	return box.Width(width - 2).Render(strings.Join(parts, "\n"))
}
