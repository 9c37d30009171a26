package textutil

import (
	"fmt"
	"strings"
	"unicode"
)

// SanitizeTerminalText makes document text safe to draw in the preview. Tabs
// and line breaks become spaces and other control characters become '?', so
// no escape sequence reaches the terminal. Invisible formatting runes are
// shown as ⟪U+XXXX⟫ so reordered or hidden text stays visible.
func SanitizeTerminalText(text string) string {
	if strings.IndexFunc(text, needsSanitizing) == -1 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			b.WriteByte('?')
		case isFormattingRune(r):
			fmt.Fprintf(&b, "⟪U+%04X⟫", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasFormattingRunes reports whether text contains bidi controls, zero-width
// characters or other invisible formatting runes. Link destinations carrying
// one are rejected.
func HasFormattingRunes(text string) bool {
	return strings.IndexFunc(text, isFormattingRune) != -1
}

func needsSanitizing(r rune) bool {
	return unicode.IsControl(r) || isFormattingRune(r)
}

// isFormattingRune matches the Cf category (bidi embeddings and isolates,
// zero-width space and joiners, soft hyphen, BOM) plus the line and
// paragraph separators.
func isFormattingRune(r rune) bool {
	return unicode.In(r, unicode.Cf, unicode.Zl, unicode.Zp)
}
