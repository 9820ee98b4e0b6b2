// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jeranaias/paychat/internal/model"
)

// =============================================================================
// ASSISTANT
// =============================================================================

// AssistantRequest is the body of an assistant call.
type AssistantRequest struct {
	Message string `json:"mensagem"`
}

// AssistantReply is the assistant's answer to one user message.
type AssistantReply struct {
	Text    string      `json:"resposta"`
	Actions *ActionsDTO `json:"acoes,omitempty"`
}

// ActionsDTO is the wire form of the side-effect payload.
type ActionsDTO struct {
	PaymentRequired bool       `json:"payment_required,omitempty"`
	PlanID          string     `json:"plan_id,omitempty"`
	PaymentMethod   string     `json:"payment_method,omitempty"`
	PixCode         string     `json:"pix_code,omitempty"`
	QRCode          QRCodeSpec `json:"qr_code,omitzero"`
	Barcode         string     `json:"barcode,omitempty"`
	PaymentURL      string     `json:"payment_url,omitempty"`
	TransactionID   string     `json:"transaction_id,omitempty"`
}

// Model converts the payload to its domain form. A nil receiver yields nil.
func (a *ActionsDTO) Model() *model.Actions {
	if a == nil {
		return nil
	}
	return &model.Actions{
		PaymentRequired: a.PaymentRequired,
		PlanID:          a.PlanID,
		PaymentMethod:   a.PaymentMethod,
		PixCode:         a.PixCode,
		QRImage:         a.QRCode.Image,
		Barcode:         a.Barcode,
		PaymentURL:      a.PaymentURL,
		TransactionID:   a.TransactionID,
	}
}

// QRCodeSpec holds the qr_code field, which backends send either as an image
// string or as a bare boolean meaning "a QR code exists, render it yourself".
type QRCodeSpec struct {
	Image   string
	Present bool
}

// UnmarshalJSON accepts a string, a boolean or null.
func (q *QRCodeSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = QRCodeSpec{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QRCodeSpec{Image: s, Present: s != ""}
		return nil
	default:
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("qr_code: expected string or boolean, got %s", data)
		}
		*q = QRCodeSpec{Present: b}
		return nil
	}
}

// MarshalJSON writes the image when there is one, otherwise the flag.
func (q QRCodeSpec) MarshalJSON() ([]byte, error) {
	if q.Image != "" {
		return json.Marshal(q.Image)
	}
	return json.Marshal(q.Present)
}

// IsZero lets omitzero drop an absent QR code.
func (q QRCodeSpec) IsZero() bool {
	return q.Image == "" && !q.Present
}

// =============================================================================
// PAYMENT
// =============================================================================

// MethodCard is the only method submitted through the payment endpoint;
// instant transfer and bank slip are issued by the assistant.
const MethodCard = "cartao"

// CardData is the wire form of card credentials.
type CardData struct {
	Number     string `json:"numero_cartao"`
	Expiry     string `json:"validade"`
	CVV        string `json:"cvv"`
	HolderName string `json:"nome_cartao"`
	NationalID string `json:"cpf"`
}

// LogValue redacts the credentials; they must never reach a log sink.
func (CardData) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

// PaymentRequest is the body of a payment submission.
type PaymentRequest struct {
	Method string   `json:"metodo"`
	PlanID string   `json:"plano_id"`
	Card   CardData `json:"dados_pagamento"`
}

// PaymentResult is the outcome of a submission. Success false means the
// payment was declined; Message carries the reason.
type PaymentResult struct {
	Success bool         `json:"sucesso"`
	Message string       `json:"mensagem,omitempty"`
	Data    *PaymentData `json:"dados,omitempty"`
}

// PaymentData is the payload of an accepted submission.
type PaymentData struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status,omitempty"`
}

// TransactionID returns the id of an approved payment.
func (r *PaymentResult) TransactionID() string {
	if r == nil || r.Data == nil {
		return ""
	}
	return r.Data.TransactionID
}

// StatusResult is the answer of a status query.
type StatusResult struct {
	Success bool        `json:"sucesso"`
	Message string      `json:"mensagem,omitempty"`
	Data    *StatusData `json:"dados,omitempty"`
}

// StatusData is the payload of a status answer.
type StatusData struct {
	Status string `json:"status"`
}

// Status returns the reported transaction status, or "".
func (r *StatusResult) Status() string {
	if r == nil || r.Data == nil {
		return ""
	}
	return r.Data.Status
}
