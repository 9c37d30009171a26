package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeSource prepares markup source for line scanning: CRLF and lone CR
// become LF and NUL becomes U+FFFD. With nfc set the text is also put into
// Unicode normalization form C.
func NormalizeSource(src string, nfc bool) string {
	if src == "" {
		return ""
	}
	if strings.ContainsRune(src, '\r') {
		src = newlineNormalizer.Replace(src)
	}
	if strings.ContainsRune(src, 0) {
		src = strings.ReplaceAll(src, "\x00", "\uFFFD")
	}
	if nfc && !norm.NFC.IsNormalString(src) {
		src = norm.NFC.String(src)
	}
	return src
}
