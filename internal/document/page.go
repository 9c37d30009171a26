package document

import (
	"html"
	"strings"

	"github.com/kk-code-lab/rmark/internal/markup"
)

// PageOptions controls standalone page output.
type PageOptions struct {
	// Stylesheet is linked from the page head when set.
	Stylesheet string
	// Lang is used when the front matter does not set one.
	Lang string
	// FallbackTitle is used when neither front matter nor a heading gives a
	// title, typically the file stem.
	FallbackTitle string
}

// RenderPage renders the document as a complete HTML5 page.
func (d *Document) RenderPage(c *markup.Converter, opts PageOptions) string {
	lang := firstNonEmpty(d.Meta.Lang, opts.Lang, "en")
	title := firstNonEmpty(d.Title(c), opts.FallbackTitle, "Untitled")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="` + html.EscapeString(lang) + "\">\n")
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	if desc := strings.TrimSpace(d.Meta.Description); desc != "" {
		b.WriteString(`<meta name="description" content="` + html.EscapeString(desc) + "\">\n")
	}
	if len(d.Meta.Tags) > 0 {
		b.WriteString(`<meta name="keywords" content="` + html.EscapeString(strings.Join(d.Meta.Tags, ", ")) + "\">\n")
	}
	if opts.Stylesheet != "" {
		b.WriteString(`<link rel="stylesheet" href="` + html.EscapeString(opts.Stylesheet) + "\">\n")
	}
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	if body := d.Render(c); body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
