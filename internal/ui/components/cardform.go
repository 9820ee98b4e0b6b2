// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/ui/styles"
	"github.com/jeranaias/paychat/internal/util"
)

// =============================================================================
// CARD FORM
// =============================================================================

// CardForm holds one text input per card field. Values are masked by the
// payment controller; the form only echoes what the controller accepted.
type CardForm struct {
	inputs []textinput.Model
	focus  int
}

// NewCardForm creates an empty form focused on the card number.
func NewCardForm() CardForm {
	inputs := make([]textinput.Model, len(payment.FormFields))
	for i, field := range payment.FormFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = field.Placeholder()
		ti.CharLimit = field.MaxLength()
		ti.Width = 24
		if field == payment.FieldCVV {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	return CardForm{inputs: inputs}
}

// Reset clears every input and moves focus back to the first one.
func (f *CardForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
}

// Focused returns the field with the cursor.
func (f *CardForm) Focused() payment.FormField {
	return payment.FormFields[f.focus]
}

// Focus puts the cursor in the focused input.
func (f *CardForm) Focus() tea.Cmd {
	for i := range f.inputs {
		if i != f.focus {
			f.inputs[i].Blur()
		}
	}
	return f.inputs[f.focus].Focus()
}

// Blur removes the cursor from every input.
func (f *CardForm) Blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// Next moves focus to the following input, wrapping around.
func (f *CardForm) Next() tea.Cmd {
	f.focus = (f.focus + 1) % len(f.inputs)
	return f.Focus()
}

// Prev moves focus to the previous input, wrapping around.
func (f *CardForm) Prev() tea.Cmd {
	f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	return f.Focus()
}

// Update feeds msg to the focused input. When the text changed it returns
// the field and its raw value so the caller can mask it.
func (f *CardForm) Update(msg tea.Msg) (cmd tea.Cmd, field payment.FormField, raw string, changed bool) {
	before := f.inputs[f.focus].Value()
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	after := f.inputs[f.focus].Value()
	return cmd, payment.FormFields[f.focus], after, after != before
}

// SetValue replaces the text of field, keeping the cursor at the end.
func (f *CardForm) SetValue(field payment.FormField, value string) {
	for i, ff := range payment.FormFields {
		if ff == field && f.inputs[i].Value() != value {
			f.inputs[i].SetValue(value)
			f.inputs[i].CursorEnd()
		}
	}
}

// Sync copies the controller's field values into the inputs.
func (f *CardForm) Sync(fields []payment.FieldView) {
	for _, fv := range fields {
		f.SetValue(fv.Field, fv.Value)
	}
}

// fieldLabelWidth aligns the inputs of the card form.
const fieldLabelWidth = 16

// View renders the form, one labelled input per line.
func (f *CardForm) View(theme *styles.Theme, active bool) string {
	lines := make([]string, 0, len(f.inputs))
	for i, field := range payment.FormFields {
		label := theme.FieldLabel
		if active && i == f.focus {
			label = theme.FieldActive
		}
		lines = append(lines, label.Render(util.PadRight(field.Label()+":", fieldLabelWidth))+" "+f.inputs[i].View())
	}
	return strings.Join(lines, "\n")
}
