package preview

import (
	"strings"

	"golang.org/x/net/html"
)

// inlineLines turns the HTML produced by markup.Substitute into styled lines,
// splitting at <br>. Nested tags apply the innermost style; links and images
// are followed by their destination in parentheses.
func inlineLines(fragment string, base TextStyleKind) [][]Segment {
	var lines [][]Segment
	var current []Segment
	styles := []TextStyleKind{base}
	var hrefs []string

	emit := func(text string, style TextStyleKind) {
		if text == "" {
			return
		}
		if n := len(current); n > 0 && current[n-1].Style == style {
			current[n-1].Text += text
			return
		}
		current = append(current, Segment{Text: text, Style: style})
	}
	push := func(style TextStyleKind) {
		if base == TextStyleHeading && style != TextStyleCode && style != TextStyleLink {
			style = TextStyleHeading
		}
		styles = append(styles, style)
	}
	pop := func() {
		if len(styles) > 1 {
			styles = styles[:len(styles)-1]
		}
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			emit(string(z.Text()), styles[len(styles)-1])
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "em":
				push(TextStyleEmphasis)
			case "strong":
				push(TextStyleStrong)
			case "s":
				push(TextStyleStrike)
			case "code":
				push(TextStyleCode)
			case "a":
				push(TextStyleLink)
				hrefs = append(hrefs, attr(tok, "href"))
			case "br":
				lines = append(lines, current)
				current = nil
			case "img":
				emit(attr(tok, "alt"), styles[len(styles)-1])
				if src := attr(tok, "src"); src != "" {
					emit(" (", TextStylePlain)
					emit(src, TextStyleLink)
					emit(")", TextStylePlain)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "em", "strong", "s", "code":
				pop()
			case "a":
				pop()
				if n := len(hrefs); n > 0 {
					if href := hrefs[n-1]; href != "" {
						emit(" (", TextStylePlain)
						emit(href, TextStyleLink)
						emit(")", TextStylePlain)
					}
					hrefs = hrefs[:n-1]
				}
			}
		}
	}
	return append(lines, current)
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
