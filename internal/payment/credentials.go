// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/paychat/internal/mask"
)

// =============================================================================
// FORM FIELDS
// =============================================================================

// FormField identifies an input of the card form.
type FormField int

const (
	FieldCardNumber FormField = iota
	FieldExpiry
	FieldCVV
	FieldHolderName
	FieldNationalID

	formFieldCount
)

// FormFields lists the card form inputs in display order.
var FormFields = []FormField{FieldCardNumber, FieldExpiry, FieldCVV, FieldHolderName, FieldNationalID}

// Label returns the input label.
func (f FormField) Label() string {
	switch f {
	case FieldCardNumber:
		return "Número do Cartão"
	case FieldExpiry:
		return "Validade"
	case FieldCVV:
		return "CVV"
	case FieldHolderName:
		return "Nome no Cartão"
	case FieldNationalID:
		return "CPF"
	default:
		return ""
	}
}

// Placeholder returns the hint shown in an empty input.
func (f FormField) Placeholder() string {
	if m, ok := f.mask(); ok {
		return m.Placeholder()
	}
	return "Nome como está no cartão"
}

// MaxLength returns the maximum display length of the input.
func (f FormField) MaxLength() int {
	switch f {
	case FieldCardNumber:
		return 19
	case FieldExpiry:
		return 5
	case FieldCVV:
		return 4
	case FieldNationalID:
		return 14
	default:
		return 64
	}
}

func (f FormField) mask() (mask.Field, bool) {
	switch f {
	case FieldCardNumber:
		return mask.CardNumber, true
	case FieldExpiry:
		return mask.Expiry, true
	case FieldCVV:
		return mask.CVV, true
	case FieldNationalID:
		return mask.NationalID, true
	default:
		return 0, false
	}
}

// Normalize returns the canonical display value for raw input.
func (f FormField) Normalize(raw string) string {
	if m, ok := f.mask(); ok {
		return mask.Apply(m, raw)
	}
	if r := []rune(raw); len(r) > f.MaxLength() {
		raw = string(r[:f.MaxLength()])
	}
	return raw
}

// Form holds the masked values of an in-progress card form.
type Form struct {
	values [formFieldCount]string
}

// Set stores the masked form of raw and returns it.
func (f *Form) Set(field FormField, raw string) string {
	if field < 0 || field >= formFieldCount {
		return ""
	}
	v := field.Normalize(raw)
	f.values[field] = v
	return v
}

// Value returns the current display value of a field.
func (f *Form) Value(field FormField) string {
	if field < 0 || field >= formFieldCount {
		return ""
	}
	return f.values[field]
}

// Credentials converts the form into submission credentials.
func (f *Form) Credentials() Credentials {
	return Credentials{
		Number:     f.values[FieldCardNumber],
		Expiry:     f.values[FieldExpiry],
		CVV:        f.values[FieldCVV],
		HolderName: f.values[FieldHolderName],
		NationalID: f.values[FieldNationalID],
	}
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// Credentials are the card details of one submission. They are never
// logged or persisted.
type Credentials struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
	NationalID string
}

// String redacts the credentials.
func (Credentials) String() string {
	return "Credentials{[REDACTED]}"
}

// GoString redacts the credentials for %#v.
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue redacts the credentials for slog.
func (Credentials) LogValue() slog.Value {
	return slog.StringValue("[REDACTED]")
}

// Normalize returns the wire form: digits only for numeric fields, MM/YY
// for the expiry and an NFC-normalized, trimmed holder name.
func (c Credentials) Normalize() Credentials {
	clamp := func(f mask.Field, s string) string {
		return mask.Digits(mask.Apply(f, s))
	}
	return Credentials{
		Number:     clamp(mask.CardNumber, c.Number),
		Expiry:     mask.Apply(mask.Expiry, c.Expiry),
		CVV:        clamp(mask.CVV, c.CVV),
		HolderName: norm.NFC.String(strings.Join(strings.Fields(c.HolderName), " ")),
		NationalID: clamp(mask.NationalID, c.NationalID),
	}
}

// ValidationError describes an unusable credential field.
type ValidationError struct {
	Field   FormField
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field.Label(), e.Message)
}

// Validate checks that every field is filled in. It expects normalized
// credentials.
func (c Credentials) Validate() error {
	required := []struct {
		field FormField
		value string
	}{
		{FieldCardNumber, c.Number},
		{FieldExpiry, c.Expiry},
		{FieldCVV, c.CVV},
		{FieldHolderName, c.HolderName},
		{FieldNationalID, c.NationalID},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Message: "campo obrigatório"}
		}
	}

	digits := mask.Digits(c.Expiry)
	if len(digits) != 4 {
		return &ValidationError{Field: FieldExpiry, Message: "use o formato MM/AA"}
	}
	if month := digits[:2]; month < "01" || month > "12" {
		return &ValidationError{Field: FieldExpiry, Message: "mês inválido"}
	}
	return nil
}
