// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mask formats credential input fields as the user types.
//
// Every mask strips non-digits, clamps to the field's digit budget and
// re-inserts the field's separators. Applying a mask to its own output is a
// no-op, so it is safe to run on every keystroke.
package mask

import "strings"

// Field identifies a masked credential input.
type Field int

const (
	// CardNumber is formatted as four groups of four digits.
	CardNumber Field = iota
	// Expiry is formatted as MM/YY.
	Expiry
	// CVV is up to four digits without separators.
	CVV
	// NationalID is a CPF, formatted as 000.000.000-00.
	NationalID
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case CardNumber:
		return "card_number"
	case Expiry:
		return "expiry"
	case CVV:
		return "cvv"
	case NationalID:
		return "national_id"
	default:
		return "unknown"
	}
}

// MaxDigits returns how many digits the field accepts.
func (f Field) MaxDigits() int {
	switch f {
	case CardNumber:
		return 16
	case Expiry, CVV:
		return 4
	case NationalID:
		return 11
	default:
		return 0
	}
}

// Placeholder returns the input hint shown for an empty field.
func (f Field) Placeholder() string {
	switch f {
	case CardNumber:
		return "0000 0000 0000 0000"
	case Expiry:
		return "MM/AA"
	case CVV:
		return "123"
	case NationalID:
		return "000.000.000-00"
	default:
		return ""
	}
}

// Apply masks raw input for the given field.
func Apply(f Field, raw string) string {
	d := Digits(raw)
	if max := f.MaxDigits(); len(d) > max {
		d = d[:max]
	}

	switch f {
	case CardNumber:
		return group(d, func(i int) string {
			if i > 0 && i%4 == 0 {
				return " "
			}
			return ""
		})
	case Expiry:
		return group(d, func(i int) string {
			if i == 2 {
				return "/"
			}
			return ""
		})
	case NationalID:
		return group(d, func(i int) string {
			switch i {
			case 3, 6:
				return "."
			case 9:
				return "-"
			}
			return ""
		})
	default:
		return d
	}
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// group writes digits, prefixing digit i with sep(i). Separators only ever
// appear between digits, never trailing.
func group(digits string, sep func(i int) string) string {
	var b strings.Builder
	b.Grow(len(digits) + 4)
	for i := 0; i < len(digits); i++ {
		b.WriteString(sep(i))
		b.WriteByte(digits[i])
	}
	return b.String()
}
