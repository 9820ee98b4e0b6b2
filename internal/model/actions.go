// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Actions is the side-effect payload an assistant reply may carry. Every
// field is optional; the payment layer interprets whichever are present.
type Actions struct {
	PaymentRequired bool
	PlanID          string
	PaymentMethod   string

	// PixCode is the copy-and-paste instant transfer code.
	PixCode string
	// QRImage is an image reference or raw base64 PNG. Empty when the
	// backend only signals that a QR code exists.
	QRImage string

	Barcode    string
	PaymentURL string

	TransactionID string
}

// IsEmpty returns true if the payload requests no side effect.
func (a *Actions) IsEmpty() bool {
	return a == nil || *a == Actions{}
}
