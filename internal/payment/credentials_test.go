// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payment

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormField_Normalize(t *testing.T) {
	tests := []struct {
		field FormField
		raw   string
		want  string
	}{
		{FieldCardNumber, "41111111111111119999", "4111 1111 1111 1111"},
		{FieldExpiry, "0128", "01/28"},
		{FieldCVV, "12a3", "123"},
		{FieldNationalID, "12345678909", "123.456.789-09"},
	}
	for _, tt := range tests {
		t.Run(tt.field.Label(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Normalize(tt.raw))
		})
	}
}

func TestCredentials_Validate(t *testing.T) {
	ok := validCard().Normalize()
	require.NoError(t, ok.Validate())

	badMonth := ok
	badMonth.Expiry = "13/30"
	var verr *ValidationError
	require.ErrorAs(t, badMonth.Validate(), &verr)
	assert.Equal(t, FieldExpiry, verr.Field)

	short := ok
	short.Expiry = "1/3"
	require.ErrorAs(t, short.Validate(), &verr)
	assert.Equal(t, FieldExpiry, verr.Field)

	empty := Credentials{}
	require.ErrorAs(t, empty.Validate(), &verr)
	assert.Equal(t, FieldCardNumber, verr.Field)
}

func TestCredentials_NeverPrinted(t *testing.T) {
	creds := validCard()

	for _, s := range []string{
		fmt.Sprint(creds),
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%#v", creds),
	} {
		assert.NotContains(t, s, "4111")
		assert.NotContains(t, s, "123")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("submit", "card", creds)
	assert.NotContains(t, buf.String(), "4111")
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestForm_Credentials(t *testing.T) {
	var f Form
	f.Set(FieldCardNumber, "4111111111111111")
	f.Set(FieldHolderName, "Ana")
	f.Set(FormField(99), "ignored")

	c := f.Credentials()
	assert.Equal(t, "4111 1111 1111 1111", c.Number)
	assert.Equal(t, "Ana", c.HolderName)
	assert.Equal(t, "", f.Value(FormField(99)))
}

func TestIsApprovedStatus(t *testing.T) {
	assert.True(t, IsApprovedStatus("aprovado"))
	assert.True(t, IsApprovedStatus(" Approved "))
	assert.False(t, IsApprovedStatus("pendente"))
	assert.False(t, IsApprovedStatus("processing"))
	assert.False(t, IsApprovedStatus(""))
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("PIX")
	require.True(t, ok)
	assert.Equal(t, MethodInstantTransfer, m)

	m, ok = ParseMethod("cartão")
	require.True(t, ok)
	assert.Equal(t, MethodCard, m)

	_, ok = ParseMethod("cheque")
	assert.False(t, ok)
}
