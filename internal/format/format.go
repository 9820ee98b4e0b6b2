// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	urlPattern    = regexp.MustCompile(`https?://[^\s]+`)
	strongPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emPattern     = regexp.MustCompile(`_(.*?)_`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	linkSlot      = regexp.MustCompile(linkOpen + `(\d+)` + linkClose)
)

// Private-use runes delimit link placeholders during the emphasis passes.
const (
	linkOpen  = "\uE000"
	linkClose = "\uE001"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five HTML-significant characters with entities.
func EscapeHTML(s string) string {
	return escaper.Replace(s)
}

// User renders user-authored text. The result never contains markup that the
// user typed.
func User(text string) string {
	return EscapeHTML(text)
}

// Assistant renders assistant-authored text.
//
// URLs are swapped for placeholders before the emphasis passes run so that
// underscores or asterisks inside a link never turn into tags.
func Assistant(text string) string {
	var links []string
	out := urlPattern.ReplaceAllStringFunc(text, func(u string) string {
		links = append(links, anchor(u))
		return linkOpen + strconv.Itoa(len(links)-1) + linkClose
	})

	out = strongPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = emPattern.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\n", "<br>")

	if len(links) == 0 {
		return out
	}
	return linkSlot.ReplaceAllStringFunc(out, func(slot string) string {
		m := linkSlot.FindStringSubmatch(slot)
		i, err := strconv.Atoi(m[1])
		if err != nil || i >= len(links) {
			return slot
		}
		return links[i]
	})
}

func anchor(u string) string {
	attr := EscapeHTML(u)
	return `<a href="` + attr + `" target="_blank" rel="noopener noreferrer">` + attr + `</a>`
}

// Plain reduces markup produced by this package to terminal-friendly text:
// <br> becomes a newline, tags are dropped and entities are decoded.
func Plain(markup string) string {
	s := strings.ReplaceAll(markup, "<br>", "\n")
	s = tagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

// Markdown rewrites assistant markup as Markdown for terminal renderers.
// Emphasis tags map back to their Markdown markers and anchors keep only
// their target.
func Markdown(markup string) string {
	r := strings.NewReplacer(
		"<br>", "  \n",
		"<strong>", "**", "</strong>", "**",
		"<em>", "_", "</em>", "_",
	)
	s := r.Replace(markup)
	s = tagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
