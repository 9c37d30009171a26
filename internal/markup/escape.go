package markup

import (
	"html"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func unescapeHTML(s string) string {
	return html.UnescapeString(s)
}
