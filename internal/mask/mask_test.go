// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mask

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		field Field
		in    string
		want  string
	}{
		{CardNumber, "4111111111111111", "4111 1111 1111 1111"},
		{CardNumber, "41111111111111112222", "4111 1111 1111 1111"},
		{CardNumber, "4111", "4111"},
		{CardNumber, "41111", "4111 1"},
		{CardNumber, "4111-1111 abc", "4111 1111"},
		{CardNumber, "", ""},
		{Expiry, "12", "12"},
		{Expiry, "123", "12/3"},
		{Expiry, "1228", "12/28"},
		{Expiry, "12/289", "12/28"},
		{CVV, "12a34", "1234"},
		{CVV, "12345", "1234"},
		{NationalID, "123", "123"},
		{NationalID, "1234", "123.4"},
		{NationalID, "1234567", "123.456.7"},
		{NationalID, "1234567890", "123.456.789-0"},
		{NationalID, "12345678901", "123.456.789-01"},
		{NationalID, "123456789012345", "123.456.789-01"},
	}

	for _, tt := range tests {
		t.Run(tt.field.String()+"/"+tt.in, func(t *testing.T) {
			if got := Apply(tt.field, tt.in); got != tt.want {
				t.Errorf("Apply(%v, %q) = %q, want %q", tt.field, tt.in, got, tt.want)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	inputs := []string{"", "4", "41111", "4111111111111111", "999999999999999999999", "12/2", "1a2b3c4d5e6f"}
	for _, f := range []Field{CardNumber, Expiry, CVV, NationalID} {
		for _, in := range inputs {
			once := Apply(f, in)
			if twice := Apply(f, once); twice != once {
				t.Errorf("%v: Apply(Apply(%q)) = %q, want %q", f, in, twice, once)
			}
		}
	}
}

func TestApply_ClampsDigits(t *testing.T) {
	for _, f := range []Field{CardNumber, Expiry, CVV, NationalID} {
		got := Digits(Apply(f, "123456789012345678901234"))
		if len(got) != f.MaxDigits() {
			t.Errorf("%v: kept %d digits, want %d", f, len(got), f.MaxDigits())
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("123.456.789-01"); got != "12345678901" {
		t.Errorf("Digits() = %q", got)
	}
	if got := Digits("１２３"); got != "" {
		t.Errorf("Digits() kept non-ASCII digits: %q", got)
	}
}
