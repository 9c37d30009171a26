package markup

import (
	"strings"
	"unicode"

	"github.com/kk-code-lab/rmark/internal/textutil"
)

var safeSchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"mailto": {},
	"ftp":    {},
	"tel":    {},
}

var safeImageData = []string{
	"data:image/png;",
	"data:image/gif;",
	"data:image/jpeg;",
	"data:image/webp;",
}

// sanitizeLinkDestination validates an unescaped destination and returns it
// escaped for use in an attribute. Relative references and fragments pass;
// absolute ones need a known scheme.
func sanitizeLinkDestination(dest string, image bool) (string, bool) {
	if textutil.HasFormattingRunes(dest) {
		return "", false
	}
	for _, r := range dest {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	if strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, `\\`) {
		return "", false
	}

	scheme, ok := destinationScheme(dest)
	if !ok {
		return escapeHTML(dest), true
	}
	lower := strings.ToLower(dest)
	if scheme == "data" && image {
		for _, prefix := range safeImageData {
			if strings.HasPrefix(lower, prefix) {
				return escapeHTML(dest), true
			}
		}
		return "", false
	}
	if _, ok := safeSchemes[scheme]; !ok {
		return "", false
	}
	return escapeHTML(dest), true
}

// destinationScheme returns the lower-cased scheme of dest, if it has one.
// Browsers ignore embedded whitespace in schemes, so it is skipped here too.
func destinationScheme(dest string) (string, bool) {
	var b strings.Builder
	for _, r := range dest {
		switch {
		case r == ':':
			if b.Len() == 0 {
				return "", false
			}
			return strings.ToLower(b.String()), true
		case r == '/' || r == '?' || r == '#':
			return "", false
		case unicode.IsSpace(r):
			continue
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '-' || r == '.'):
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	return "", false
}
