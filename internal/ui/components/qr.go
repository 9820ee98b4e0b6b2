// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/boombuler/barcode/qr"
)

// qrQuietZone is the blank border, in modules, scanners need around a code.
const qrQuietZone = 2

// TerminalQR renders content as a QR code using half-block characters, two
// module rows per text line. The result must be printed black on white.
func TerminalQR(content string) (string, error) {
	code, err := qr.Encode(content, qr.L, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	bounds := code.Bounds()
	size := bounds.Dx()
	dark := func(x, y int) bool {
		x -= qrQuietZone
		y -= qrQuietZone
		if x < 0 || y < 0 || x >= size || y >= size {
			return false
		}
		r, _, _, _ := code.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		return r == 0
	}

	total := size + 2*qrQuietZone
	var b strings.Builder
	for y := 0; y < total; y += 2 {
		for x := 0; x < total; x++ {
			top, bottom := dark(x, y), dark(x, y+1)
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		if y+2 < total {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
