package site

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
)

var (
	reBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic = regexp.MustCompile(`\*(.+?)\*`)
)

// previewLen is the number of characters shown on an index card.
const previewLen = 120

// FormatInline escapes s and applies **bold** and *italic*.
func FormatInline(s string) string {
	escaped := templ.EscapeString(s)
	escaped = reBold.ReplaceAllString(escaped, "<strong>$1</strong>")
	return reItalic.ReplaceAllString(escaped, "<em>$1</em>")
}

// Preview returns the first line of desc, trimmed and cut to previewLen
// characters with a trailing ellipsis.
func Preview(desc string) string {
	line, _, _ := strings.Cut(desc, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= previewLen {
		return line
	}
	return string([]rune(line)[:previewLen]) + "…"
}
