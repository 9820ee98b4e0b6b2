// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import "strings"

// =============================================================================
// METHOD
// =============================================================================

// Method is a payment method.
type Method int

const (
	MethodNone Method = iota
	// MethodInstantTransfer is PIX.
	MethodInstantTransfer
	// MethodBankSlip is boleto.
	MethodBankSlip
	// MethodCard is credit card.
	MethodCard
)

// Methods lists the selectable methods in display order.
var Methods = []Method{MethodInstantTransfer, MethodBankSlip, MethodCard}

// Code returns the wire code of the method.
func (m Method) Code() string {
	switch m {
	case MethodInstantTransfer:
		return "pix"
	case MethodBankSlip:
		return "boleto"
	case MethodCard:
		return "cartao"
	default:
		return ""
	}
}

// Label returns the user-facing name of the method.
func (m Method) Label() string {
	switch m {
	case MethodInstantTransfer:
		return "PIX"
	case MethodBankSlip:
		return "Boleto"
	case MethodCard:
		return "Cartão de Crédito"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (m Method) String() string {
	if m == MethodNone {
		return "none"
	}
	return m.Code()
}

// ParseMethod parses a wire code or a user-typed method name.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pix":
		return MethodInstantTransfer, true
	case "boleto":
		return MethodBankSlip, true
	case "cartao", "cartão", "card", "credito", "crédito":
		return MethodCard, true
	default:
		return MethodNone, false
	}
}

// =============================================================================
// STATE
// =============================================================================

// State is the position of the controller in the payment flow.
type State int

const (
	StateIdle State = iota
	StateMethodSelected
	StateCollectingCredentials
	StateSubmitting
	StateAwaitingConfirmation
	StateApproved
	StateDeclined
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMethodSelected:
		return "method_selected"
	case StateCollectingCredentials:
		return "collecting_credentials"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateApproved:
		return "approved"
	case StateDeclined:
		return "declined"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanRetry reports whether Retry is allowed in this state.
func (s State) CanRetry() bool {
	return s == StateDeclined || s == StateFailed
}

// =============================================================================
// SESSION
// =============================================================================

// SessionStatus is the lifecycle status of a payment session.
type SessionStatus string

const (
	StatusPending              SessionStatus = "pending"
	StatusAwaitingConfirmation SessionStatus = "awaiting_confirmation"
	StatusApproved             SessionStatus = "approved"
	StatusDeclined             SessionStatus = "declined"
	StatusFailed               SessionStatus = "failed"
)

// Session is the payment currently in progress. At most one exists; it is
// replaced wholesale by every new payment action.
type Session struct {
	TransactionID string
	Method        Method
	Status        SessionStatus
}

// IsApprovedStatus reports whether a backend status string is terminal.
// Every other value, known or not, means the payment is still pending.
func IsApprovedStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "aprovado":
		return true
	default:
		return false
	}
}
