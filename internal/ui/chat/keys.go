// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings of the TUI.
type KeyMap struct {
	// Global
	Send        key.Binding
	Pix         key.Binding
	Boleto      key.Binding
	Card        key.Binding
	ToggleFocus key.Binding
	Clear       key.Binding
	ToggleTheme key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Quit        key.Binding

	// Payment panel
	Copy     key.Binding
	Open     key.Binding
	Status   key.Binding
	Retry    key.Binding
	Dismiss  key.Binding
	ToggleQR key.Binding

	// Card form
	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "enviar"),
		),
		Pix: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "PIX"),
		),
		Boleto: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "boleto"),
		),
		Card: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "cartão"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "chat/pagamento"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "limpar"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "tema"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "rolar"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "rolar"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "sair"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copiar"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "link do boleto"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "tentar novamente"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x", "esc"),
			key.WithHelp("x/esc", "fechar"),
		),
		ToggleQR: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "QR code"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "pagar"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancelar"),
		),
		NextField: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "próximo campo"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "campo anterior"),
		),
	}
}

// hints converts bindings to status bar hints.
func hints(bindings ...key.Binding) []hint {
	out := make([]hint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, hint{h.Key, h.Desc})
	}
	return out
}

type hint struct {
	key  string
	desc string
}
