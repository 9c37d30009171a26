package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const DefaultTabWidth = 4

// ExpandTabs replaces tab characters with spaces respecting terminal column width.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text) + tabWidth)
	column := 0
	for _, ru := range text {
		if ru == '\t' {
			spaces := tabWidth - (column % tabWidth)
			builder.WriteString(strings.Repeat(" ", spaces))
			column += spaces
			continue
		}
		builder.WriteRune(ru)
		column += RuneWidth(ru)
	}
	return builder.String()
}

// RuneWidth reports the column width of ru, never less than one.
func RuneWidth(ru rune) int {
	w := runewidth.RuneWidth(ru)
	if w < 1 {
		return 1
	}
	return w
}

// DisplayWidth reports the printable width of text, measuring grapheme
// clusters so emoji sequences count once.
func DisplayWidth(text string) int {
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			w = 1
		}
		width += w
	}
	return width
}

// TruncateToWidth cuts text to at most maxWidth columns, appending an
// ellipsis when something was dropped.
func TruncateToWidth(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if DisplayWidth(text) <= maxWidth {
		return text
	}

	const ellipsis = "…"
	if maxWidth <= 1 {
		return ellipsis
	}
	available := maxWidth - 1
	var builder strings.Builder
	current := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			w = 1
		}
		if current+w > available {
			break
		}
		builder.WriteString(g.Str())
		current += w
	}
	builder.WriteString(ellipsis)
	return builder.String()
}
