// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/ui/components"
	"github.com/jeranaias/paychat/internal/ui/styles"
)

// NoteConfigReloaded is toasted after the configuration file changed.
const NoteConfigReloaded = "Configuração recarregada"

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case RefreshMsg:
		cmds = append(cmds, m.sync(), waitForRefresh(m.ctx, m.refresh))

	case ToastTickMsg:
		cmds = append(cmds, toastTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.sess.Transcript.Composing() {
			m.renderTranscript()
		}

	case StatusDoneMsg:
		logResult("status check", msg.Err)

	case SubmitDoneMsg:
		logResult("card submission", msg.Err)

	case ConfigReloadedMsg:
		m.applyConfig(msg)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.layout()
	return m, tea.Batch(cmds...)
}

// sync reconciles the screen with session state after a change.
func (m *Model) sync() tea.Cmd {
	var cmd tea.Cmd
	v := m.sess.Payment.View()

	isForm := v.Kind == payment.ViewCardForm
	switch {
	case isForm && !m.formOpen:
		m.form.Reset()
		cmd = m.focusPanel()
	case !isForm && m.formOpen:
		m.form.Blur()
	}
	m.formOpen = isForm
	if isForm {
		m.form.Sync(v.Form)
	}

	if !v.Visible() && m.focus == focusPanel {
		cmd = m.focusChat()
	}
	if m.sess.Transcript.Len() == 0 {
		m.cache = make(map[string]string)
	}
	m.renderTranscript()
	return cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Pix):
		return m.selectMethod(payment.MethodInstantTransfer)
	case key.Matches(msg, m.keys.Boleto):
		return m.selectMethod(payment.MethodBankSlip)
	case key.Matches(msg, m.keys.Card):
		return m.selectMethod(payment.MethodCard)
	case key.Matches(msg, m.keys.Clear):
		m.sess.Reset()
		return nil
	case key.Matches(msg, m.keys.ToggleTheme):
		m.toggleTheme()
		return nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return nil
	case key.Matches(msg, m.keys.ToggleFocus):
		if m.focus == focusPanel {
			return m.focusChat()
		}
		if m.sess.Payment.View().Visible() {
			return m.focusPanel()
		}
		return nil
	}

	if m.focus == focusPanel {
		v := m.sess.Payment.View()
		if v.Kind == payment.ViewCardForm {
			return m.handleFormKey(msg)
		}
		return m.handlePanelKey(msg, v)
	}

	if key.Matches(msg, m.keys.Send) {
		if m.sess.Dialogue.Send(m.input.Value()) {
			m.input.Reset()
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handlePanelKey(msg tea.KeyMsg, v payment.View) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Copy) && v.Has(payment.ActionCopyCode):
		_ = m.sess.Toasts.CopyToClipboard(v.Code)
	case key.Matches(msg, m.keys.Open) && v.Has(payment.ActionOpenDocument):
		_ = m.sess.Toasts.CopyToClipboard(v.DocumentURL)
	case key.Matches(msg, m.keys.Status) && v.Has(payment.ActionCheckStatus):
		return m.checkStatus()
	case key.Matches(msg, m.keys.Retry) && v.Has(payment.ActionRetry):
		if err := m.sess.Payment.Retry(); err != nil {
			slog.Debug("retry ignored", "error", err)
		}
	case key.Matches(msg, m.keys.Dismiss) && v.Has(payment.ActionDismiss):
		m.sess.Payment.Dismiss()
	case key.Matches(msg, m.keys.ToggleQR) && v.Kind == payment.ViewInstantTransfer:
		show := !m.showQR()
		m.qr = &show
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.form.Blur()
		return m.submit()
	case key.Matches(msg, m.keys.Cancel):
		m.sess.Payment.Dismiss()
		return nil
	case key.Matches(msg, m.keys.NextField):
		return m.form.Next()
	case key.Matches(msg, m.keys.PrevField):
		return m.form.Prev()
	}

	cmd, field, raw, changed := m.form.Update(msg)
	if changed {
		masked, err := m.sess.Payment.SetField(field, raw)
		if err != nil {
			slog.Debug("form edit rejected", "field", field.Label(), "error", err)
			return cmd
		}
		m.form.SetValue(field, masked)
	}
	return cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m *Model) selectMethod(method payment.Method) tea.Cmd {
	if err := m.sess.Payment.SelectMethod(method); err != nil {
		slog.Debug("method selection ignored", "method", method, "error", err)
	}
	return nil
}

// checkStatus runs a status query off the UI goroutine.
func (m *Model) checkStatus() tea.Cmd {
	ctx, ctrl := m.ctx, m.sess.Payment
	return func() tea.Msg {
		return StatusDoneMsg{Err: ctrl.CheckStatus(ctx)}
	}
}

// submit sends the card form off the UI goroutine.
func (m *Model) submit() tea.Cmd {
	ctx, ctrl := m.ctx, m.sess.Payment
	return func() tea.Msg {
		return SubmitDoneMsg{Err: ctrl.SubmitForm(ctx)}
	}
}

func (m *Model) focusPanel() tea.Cmd {
	m.focus = focusPanel
	m.input.Blur()
	if m.formOpen || m.sess.Payment.View().Kind == payment.ViewCardForm {
		return m.form.Focus()
	}
	return nil
}

func (m *Model) focusChat() tea.Cmd {
	m.focus = focusChat
	m.form.Blur()
	return m.input.Focus()
}

func (m *Model) toggleTheme() {
	m.theme = m.theme.Toggle()
	if err := m.sess.Prefs.SetDarkTheme(m.theme.IsDark); err != nil {
		slog.Warn("failed to persist theme", "error", err)
	}
	if m.md != nil {
		m.md.SetDark(m.theme.IsDark)
	}
	m.cache = make(map[string]string)
	m.renderTranscript()
}

// applyConfig applies the UI part of a reloaded configuration. Backend
// settings take effect on the next start.
func (m *Model) applyConfig(msg ConfigReloadedMsg) {
	cfg := msg.Config
	if cfg == nil {
		return
	}
	m.cfg = cfg

	switch {
	case cfg.UI.Markdown && m.md == nil:
		m.md = components.NewMarkdown(m.width-10, m.theme.IsDark)
	case !cfg.UI.Markdown:
		m.md = nil
	}

	if cfg.UI.Theme != styles.ModeAuto {
		dark := styles.ResolveDark(cfg.UI.Theme, m.theme.IsDark, true)
		if dark != m.theme.IsDark {
			m.theme = styles.NewTheme(dark)
			if m.md != nil {
				m.md.SetDark(dark)
			}
		}
	}

	m.cache = make(map[string]string)
	m.renderTranscript()
	m.sess.Toasts.Status(NoteConfigReloaded)
}

// logResult records the outcome of a background payment call. The payment
// controller has already told the user about it.
func logResult(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrSubmissionInFlight), errors.Is(err, payment.ErrStatusCheckInFlight):
		slog.Debug(op+" skipped", "error", err)
	default:
		slog.Debug(op+" finished with error", "error", err)
	}
}
