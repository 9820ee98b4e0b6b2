// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`<a href="x">&'`)
	want := "&lt;a href=&quot;x&quot;&gt;&amp;&#039;"
	if got != want {
		t.Errorf("EscapeHTML() = %q, want %q", got, want)
	}
}

func TestUser_NeverEmitsUserMarkup(t *testing.T) {
	tests := []string{
		"<script>alert(1)</script>",
		`<img src=x onerror="alert(1)">`,
		"**not bold** _not em_",
		"https://example.com/<b>",
	}
	for _, in := range tests {
		got := User(in)
		if strings.ContainsAny(got, "<>\"'") {
			t.Errorf("User(%q) = %q, contains raw markup characters", in, got)
		}
		if Plain(got) != in {
			t.Errorf("Plain(User(%q)) = %q, want round trip", in, Plain(got))
		}
	}
}

func TestAssistant_EmphasisAndBreaks(t *testing.T) {
	got := Assistant("**a** _b_\nc")
	want := "<strong>a</strong> <em>b</em><br>c"
	if got != want {
		t.Errorf("Assistant() = %q, want %q", got, want)
	}
}

func TestAssistant_Links(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain link",
			in:   "veja https://exemplo.com/boleto agora",
			want: `veja <a href="https://exemplo.com/boleto" target="_blank" rel="noopener noreferrer">https://exemplo.com/boleto</a> agora`,
		},
		{
			name: "underscores inside link are kept",
			in:   "http://x.com/a_b_c",
			want: `<a href="http://x.com/a_b_c" target="_blank" rel="noopener noreferrer">http://x.com/a_b_c</a>`,
		},
		{
			name: "link runs to whitespace",
			in:   "**https://x.com**",
			want: `**<a href="https://x.com**" target="_blank" rel="noopener noreferrer">https://x.com**</a>`,
		},
		{
			name: "no scheme is not linked",
			in:   "www.exemplo.com",
			want: "www.exemplo.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assistant(tt.in); got != tt.want {
				t.Errorf("Assistant(%q) =\n  %q\nwant\n  %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAssistant_EmphasisDoesNotCrossLines(t *testing.T) {
	got := Assistant("**a\nb**")
	if strings.Contains(got, "<strong>") {
		t.Errorf("Assistant() = %q, emphasis must not span lines", got)
	}
}

func TestAssistant_Deterministic(t *testing.T) {
	in := "Plano **Premium**: R$59,90\nhttps://x.com/_p_"
	if Assistant(in) != Assistant(in) {
		t.Error("Assistant() is not deterministic")
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(Assistant("**Plano** _básico_\nR$ 29,99 &"))
	want := "**Plano** _básico_  \nR$ 29,99 &"
	if got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}
