// Package document splits front matter from markup source and renders the
// body as an HTML fragment or a standalone page.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/net/html"

	"github.com/kk-code-lab/rmark/internal/markup"
)

// ErrFrontMatter marks a front matter mapping whose values do not fit Meta.
var ErrFrontMatter = errors.New("malformed front matter")

// Meta is the front matter recognized by rmark. Unknown keys are kept in
// Extra.
type Meta struct {
	Title       string         `yaml:"title" toml:"title"`
	Lang        string         `yaml:"lang" toml:"lang"`
	Description string         `yaml:"description" toml:"description"`
	Tags        []string       `yaml:"tags" toml:"tags"`
	Draft       bool           `yaml:"draft" toml:"draft"`
	Extra       map[string]any `yaml:",inline" toml:"-"`
}

// Document is a parsed source file.
type Document struct {
	Meta Meta
	// Body is the markup with the front matter block removed.
	Body string
}

// Parse separates optional YAML ("---") or TOML ("+++") front matter from
// src. The delimited block counts as front matter only when it decodes to a
// non-empty mapping; otherwise, as with a leading "---" rule, src comes back
// unchanged as Body.
func Parse(src []byte) (*Document, error) {
	doc := &Document{Meta: Meta{Extra: map[string]any{}}, Body: string(src)}

	var probe map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(src), &probe); err != nil || len(probe) == 0 {
		return doc, nil
	}

	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	if meta.Extra == nil {
		meta.Extra = map[string]any{}
	}
	doc.Meta = meta
	doc.Body = string(body)
	return doc, nil
}

// Render converts the body to an HTML fragment.
func (d *Document) Render(c *markup.Converter) string {
	return c.Convert(d.Body)
}

// Title returns the front matter title, else the text of the first heading.
func (d *Document) Title(c *markup.Converter) string {
	if t := strings.TrimSpace(d.Meta.Title); t != "" {
		return t
	}
	for _, block := range c.Segment(d.Body) {
		if block.Kind != markup.Heading {
			continue
		}
		return textContent(c.Substitute(strings.Join(block.Lines, " ")))
	}
	return ""
}

// textContent returns the decoded text of an HTML fragment.
func textContent(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.SelfClosingTagToken, html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "alt" {
					b.Write(val)
				}
				if !more {
					break
				}
			}
		}
	}
}
