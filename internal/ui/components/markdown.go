// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown renders assistant text with glamour. The renderer is rebuilt
// lazily when the width or background changes.
type Markdown struct {
	mu       sync.Mutex
	width    int
	dark     bool
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width cells.
func NewMarkdown(width int, dark bool) *Markdown {
	return &Markdown{width: width, dark: dark}
}

// SetWidth changes the wrap width.
func (m *Markdown) SetWidth(width int) {
	m.mu.Lock()
	if width != m.width {
		m.width = width
		m.renderer = nil
	}
	m.mu.Unlock()
}

// SetDark switches between the dark and light glamour styles.
func (m *Markdown) SetDark(dark bool) {
	m.mu.Lock()
	if dark != m.dark {
		m.dark = dark
		m.renderer = nil
	}
	m.mu.Unlock()
}

// Render implements MarkdownRenderer.
func (m *Markdown) Render(markdown string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer == nil {
		style := "light"
		if m.dark {
			style = "dark"
		}
		width := m.width
		if width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		m.renderer = r
	}
	return m.renderer.Render(markdown)
}
