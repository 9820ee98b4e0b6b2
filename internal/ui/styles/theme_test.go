// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
)

func TestResolveDark(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		stored    bool
		hasStored bool
		want      bool
	}{
		{"forced dark ignores preference", ModeDark, false, true, true},
		{"forced light ignores preference", ModeLight, true, true, false},
		{"auto uses stored dark", ModeAuto, true, true, true},
		{"auto uses stored light", ModeAuto, false, true, false},
		{"mode is case insensitive", "DARK", false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveDark(tc.mode, tc.stored, tc.hasStored); got != tc.want {
				t.Errorf("ResolveDark(%q, %v, %v) = %v, want %v", tc.mode, tc.stored, tc.hasStored, got, tc.want)
			}
		})
	}
}

func TestNewThemeAndToggle(t *testing.T) {
	dark := NewTheme(true)
	if !dark.IsDark {
		t.Fatal("expected dark theme")
	}

	light := dark.Toggle()
	if light.IsDark {
		t.Error("Toggle should switch to light")
	}
	if light.Toggle().IsDark != true {
		t.Error("double Toggle should return to dark")
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme(true)
	if theme.PanelTitle.Render("Pagamento PIX") == "" {
		t.Error("PanelTitle rendered empty")
	}
	if theme.QR.Render("██") == "" {
		t.Error("QR rendered empty")
	}
}
