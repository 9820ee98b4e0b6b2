// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import "strings"

// ViewKind selects the layout of the payment panel.
type ViewKind int

const (
	ViewNone ViewKind = iota
	ViewInstructions
	ViewInstantTransfer
	ViewBankSlip
	ViewAwaiting
	ViewCardForm
	ViewProgress
	ViewApproved
	ViewDeclined
	ViewFailed
)

// Action is an affordance offered by the payment panel.
type Action int

const (
	ActionCopyCode Action = iota
	ActionOpenDocument
	ActionCheckStatus
	ActionSubmit
	ActionRetry
	ActionDismiss
)

// Label returns the button text of the action.
func (a Action) Label() string {
	switch a {
	case ActionCopyCode:
		return "Copiar código"
	case ActionOpenDocument:
		return "Visualizar Boleto"
	case ActionCheckStatus:
		return "Verificar status do pagamento"
	case ActionSubmit:
		return "Pagar"
	case ActionRetry:
		return "Tentar Novamente"
	case ActionDismiss:
		return "Fechar"
	default:
		return ""
	}
}

// FieldView is one input of a rendered card form.
type FieldView struct {
	Field       FormField
	Label       string
	Value       string
	Placeholder string
}

// View is the rendered payment panel. It is recomputed from controller
// state on every call and holds no state of its own.
type View struct {
	Kind   ViewKind
	Method Method
	State  State

	Title string
	Lines []string

	// Code is the copyable PIX code or bank slip barcode.
	Code string
	// QRSource is the QR image reference: a URL or a data: URI.
	QRSource string
	// DocumentURL links to the full bank slip.
	DocumentURL string
	Note        string

	// StatusNote annotates the view after a non-terminal status check.
	StatusNote string
	// Reason is the backend decline reason.
	Reason string

	TransactionID string
	Form          []FieldView
	Actions       []Action
}

// Visible reports whether the panel is shown at all.
func (v View) Visible() bool {
	return v.Kind != ViewNone
}

// Has reports whether the view offers an action.
func (v View) Has(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Text renders the view as plain text for line-oriented front-ends.
func (v View) Text() string {
	if !v.Visible() {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.Title)
	b.WriteByte('\n')
	for _, l := range v.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if v.Code != "" {
		b.WriteString(v.Code)
		b.WriteByte('\n')
	}
	if v.DocumentURL != "" {
		b.WriteString(v.DocumentURL)
		b.WriteByte('\n')
	}
	if v.Reason != "" {
		b.WriteString("Motivo: " + v.Reason + "\n")
	}
	if v.StatusNote != "" {
		b.WriteString(v.StatusNote + "\n")
		b.WriteString("Aguardando confirmação do pagamento...\n")
	}
	if v.Note != "" {
		b.WriteString(v.Note)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// QRSource normalizes a QR image reference: URLs and data URIs are used
// as-is, anything else is taken to be raw base64 PNG bytes.
func QRSource(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "data:") || strings.HasPrefix(image, "http") {
		return image
	}
	return "data:image/png;base64," + image
}

// instructions returns the explanatory content shown after SelectMethod.
func instructions(m Method) (title string, lines []string) {
	switch m {
	case MethodInstantTransfer:
		return "Pagamento via PIX", []string{
			"Para pagar com PIX, envie uma mensagem informando o plano desejado e solicite o pagamento via PIX.",
			`Exemplo: "Quero contratar o plano Premium e pagar com PIX"`,
		}
	case MethodBankSlip:
		return "Pagamento via Boleto", []string{
			"Para pagar com boleto, envie uma mensagem informando o plano desejado e solicite o pagamento via boleto.",
			`Exemplo: "Quero contratar o plano Básico e pagar com boleto"`,
		}
	case MethodCard:
		return "Pagamento com Cartão de Crédito", []string{
			"Para pagar com cartão, envie uma mensagem informando o plano desejado e solicite o pagamento via cartão de crédito.",
			`Exemplo: "Quero contratar o plano Premium e pagar com cartão de crédito"`,
		}
	default:
		return "Selecione um método de pagamento", []string{
			"Escolha um dos métodos de pagamento para ver mais detalhes.",
		}
	}
}
