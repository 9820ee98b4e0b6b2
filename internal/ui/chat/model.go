// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/session"
	"github.com/jeranaias/paychat/internal/ui/components"
	"github.com/jeranaias/paychat/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// InputPlaceholder is shown in the empty composer.
	InputPlaceholder = "Digite sua mensagem..."

	maxInputLength = 2000

	// qrMinHeight is the terminal height below which PIX codes are shown
	// as text only unless the user asks for the QR code.
	qrMinHeight = 48

	minViewportHeight = 3
)

// focusArea is the part of the screen receiving keys.
type focusArea int

const (
	focusChat focusArea = iota
	focusPanel
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	ctx   context.Context
	sess  *session.Session
	cfg   *config.Config
	keys  KeyMap
	theme *styles.Theme
	md    *components.Markdown

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	form     components.CardForm

	focus    focusArea
	formOpen bool
	// qr overrides the height-based QR decision; nil means automatic.
	qr *bool

	width  int
	height int
	ready  bool

	// rendered messages by ID; cleared when width or theme changes
	cache      map[string]string
	lastScroll uint64

	refresh chan struct{}

	// pre-rendered regions, recomputed by layout
	header string
	panel  string
	toasts string
	status string
}

// New creates the chat model for sess. It subscribes to the session's
// change notifications; ctx bounds the commands the model starts.
func New(ctx context.Context, sess *session.Session, cfg *config.Config, theme *styles.Theme) Model {
	input := textinput.New()
	input.Placeholder = InputPlaceholder
	input.CharLimit = maxInputLength
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		sess:     sess,
		cfg:      cfg,
		keys:     DefaultKeyMap(),
		theme:    theme,
		viewport: viewport.New(80, 20),
		input:    input,
		spinner:  sp,
		form:     components.NewCardForm(),
		cache:    make(map[string]string),
		refresh:  make(chan struct{}, 1),
	}
	if cfg.UI.Markdown {
		m.md = components.NewMarkdown(72, theme.IsDark)
	}

	// Listeners run on whatever goroutine changed the state, including
	// Update itself, so they must never block.
	signal := func() {
		select {
		case m.refresh <- struct{}{}:
		default:
		}
	}
	sess.Transcript.OnChange(signal)
	sess.Payment.OnChange(signal)
	sess.Toasts.OnChange(signal)

	return m
}

// Init starts the cursor blink, the spinner, the toast clock and the
// refresh subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		toastTick(),
		waitForRefresh(m.ctx, m.refresh),
	)
}

// Theme returns the active theme.
func (m Model) Theme() *styles.Theme {
	return m.theme
}

// =============================================================================
// LAYOUT
// =============================================================================

// markdown returns the renderer for assistant messages, or nil when
// markdown rendering is off.
func (m *Model) markdown() components.MarkdownRenderer {
	if m.md == nil {
		return nil
	}
	return m.md
}

// showQR reports whether PIX codes are drawn as terminal QR codes.
func (m *Model) showQR() bool {
	if m.qr != nil {
		return *m.qr
	}
	return m.height >= qrMinHeight
}

// renderTranscript rebuilds the viewport content from the transcript.
func (m *Model) renderTranscript() {
	snap := m.sess.Transcript.Snapshot()
	width := m.viewport.Width

	var b strings.Builder
	for i, msg := range snap.Messages {
		out, ok := m.cache[msg.ID]
		if !ok {
			out = components.RenderMessage(msg, m.theme, width, m.markdown(), m.cfg.UI.ShowTimestamps)
			m.cache[msg.ID] = out
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(out)
	}
	if snap.Composing {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(components.RenderComposing(m.theme, m.spinner.View()))
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(b.String())
	if snap.ScrollSeq != m.lastScroll || atBottom {
		m.lastScroll = snap.ScrollSeq
		m.viewport.GotoBottom()
	}
}

// layout renders the fixed regions and gives the viewport what is left.
func (m *Model) layout() {
	if !m.ready {
		return
	}

	tx, _ := m.sess.Prefs.LastTransactionID()
	m.header = components.RenderHeader(components.HeaderInfo{
		PlanID:        m.sess.Prefs.SelectedPlan(),
		TransactionID: tx,
		Backend:       m.cfg.Backend.BaseURL,
	}, m.theme, m.width)

	v := m.sess.Payment.View()
	if v.Visible() {
		m.panel = components.RenderPaymentPanel(v, m.theme, components.PanelOptions{
			Width:   m.width,
			Focused: m.focus == focusPanel,
			Spinner: m.spinner.View(),
			Form:    &m.form,
			ShowQR:  m.showQR(),
		})
	} else {
		m.panel = ""
	}

	m.toasts = components.RenderToastStack(m.sess.Toasts.Active(), m.theme, m.width, now())
	m.status = components.RenderStatusBar(m.hints(v), m.theme, m.width)

	used := lipgloss.Height(m.header) + lipgloss.Height(m.status) + lipgloss.Height(m.inputView())
	if m.panel != "" {
		used += lipgloss.Height(m.panel)
	}
	if m.toasts != "" {
		used += lipgloss.Height(m.toasts)
	}

	h := m.height - used
	if h < minViewportHeight {
		h = minViewportHeight
	}
	if h != m.viewport.Height {
		atBottom := m.viewport.AtBottom()
		m.viewport.Height = h
		if atBottom {
			m.viewport.GotoBottom()
		}
	}
}

// resize applies a new terminal size.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true

	m.viewport.Width = width
	m.input.Width = width - 6
	if m.md != nil {
		m.md.SetWidth(width - 10)
	}
	m.cache = make(map[string]string)
	m.renderTranscript()
	m.layout()
}

// hints returns the status bar entries for the focused area.
func (m *Model) hints(v payment.View) []components.Hint {
	var hs []hint
	switch {
	case m.focus == focusPanel && v.Kind == payment.ViewCardForm:
		hs = hints(m.keys.Submit, m.keys.NextField, m.keys.PrevField, m.keys.Cancel, m.keys.ToggleFocus)
	case m.focus == focusPanel:
		for _, a := range v.Actions {
			hs = append(hs, hint{components.ActionKey(a), a.Label()})
		}
		if v.Kind == payment.ViewInstantTransfer {
			hs = append(hs, hints(m.keys.ToggleQR)...)
		}
		hs = append(hs, hints(m.keys.ToggleFocus)...)
	default:
		hs = hints(m.keys.Send, m.keys.Pix, m.keys.Boleto, m.keys.Card)
		if v.Visible() {
			hs = append(hs, hints(m.keys.ToggleFocus)...)
		}
		hs = append(hs, hints(m.keys.PageUp, m.keys.Clear, m.keys.ToggleTheme)...)
	}
	hs = append(hs, hints(m.keys.Quit)...)

	out := make([]components.Hint, len(hs))
	for i, h := range hs {
		out[i] = components.Hint{Key: h.key, Desc: h.desc}
	}
	return out
}
