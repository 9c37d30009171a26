package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/rmark/internal/markup"
)

func TestParseYAMLFrontMatter(t *testing.T) {
	src := "---\ntitle: Release notes\nlang: pl\ntags: [go, html]\ndraft: true\nauthor: kk\n---\n# Heading\n\nBody *text*.\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Release notes", doc.Meta.Title)
	assert.Equal(t, "pl", doc.Meta.Lang)
	assert.Equal(t, []string{"go", "html"}, doc.Meta.Tags)
	assert.True(t, doc.Meta.Draft)
	assert.Equal(t, "kk", doc.Meta.Extra["author"])
	assert.True(t, strings.HasPrefix(doc.Body, "# Heading"), "body %q", doc.Body)
}

func TestParseTOMLFrontMatter(t *testing.T) {
	src := "+++\ntitle = \"From TOML\"\ndescription = \"d\"\n+++\ntext\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "From TOML", doc.Meta.Title)
	assert.Equal(t, "d", doc.Meta.Description)
	assert.Equal(t, "text", strings.TrimSpace(doc.Body))
}

func TestParseWithoutFrontMatter(t *testing.T) {
	src := "# Plain\n\n- item\n"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, src, doc.Body)
	assert.Empty(t, doc.Meta.Title)
	assert.NotNil(t, doc.Meta.Extra)
}

func TestParseMalformedFrontMatter(t *testing.T) {
	_, err := Parse([]byte("---\ndraft: maybe\n---\nbody\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrontMatter))
}

func TestParseLeadingRuleIsNotFrontMatter(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain text between rules", "---\nSome paragraph\n---\n", "<hr>\n<p>Some paragraph</p>\n<hr>"},
		{"heading between rules", "---\n# Heading\n---\nbody", "<hr>\n<h1>Heading</h1>\n<hr>\n<p>body</p>"},
		{"list between rules", "---\n- a\n---\n", "<hr>\n<ul><li>a</li></ul>\n<hr>"},
		{"unterminated flow sequence", "---\ntitle: [x\n---\n", "<hr>\n<p>title: [x</p>\n<hr>"},
		{"empty block", "---\n---\ntext", "<hr>\n<hr>\n<p>text</p>"},
		{"lone rule", "---\ntext", "<hr>\n<p>text</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.src, doc.Body)
			assert.Empty(t, doc.Meta.Title)
			assert.Equal(t, tt.want, doc.Render(c))
		})
	}
}

func TestRenderMatchesConvert(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	doc, err := Parse([]byte("---\ntitle: T\n---\n# A\n\n*b*\n"))
	require.NoError(t, err)

	assert.Equal(t, "<h1>A</h1>\n<p><em>b</em></p>", doc.Render(c))
}

func TestTitleFallbacks(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"front matter wins", "---\ntitle: Meta\n---\n# Heading\n", "Meta"},
		{"first heading", "intro\n\n## Second *level*\n\n# Later\n", "Second level"},
		{"heading entities decoded", "# Fish & chips\n", "Fish & chips"},
		{"heading image alt", "# ![Logo](l.png) Docs\n", "Logo Docs"},
		{"none", "just text\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Title(c))
		})
	}
}

func TestRenderPage(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	src := "---\ndescription: A \"quoted\" summary\ntags: [a, b]\n---\n# Hello <World>\n\ntext\n"
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	page := doc.RenderPage(c, PageOptions{Stylesheet: "style.css", Lang: "de"})

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>\n<html lang=\"de\">"), page)
	assert.Contains(t, page, "<title>Hello &lt;World&gt;</title>")
	assert.Contains(t, page, `<meta name="description" content="A &#34;quoted&#34; summary">`)
	assert.Contains(t, page, `<meta name="keywords" content="a, b">`)
	assert.Contains(t, page, `<link rel="stylesheet" href="style.css">`)
	assert.Contains(t, page, "<body>\n<h1>Hello &lt;World&gt;</h1>\n<p>text</p>\n</body>")
}

func TestRenderPageFallbackTitle(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	doc, err := Parse([]byte(""))
	require.NoError(t, err)

	page := doc.RenderPage(c, PageOptions{FallbackTitle: "notes"})
	assert.Contains(t, page, "<title>notes</title>")
	assert.Contains(t, page, `<html lang="en">`)
	assert.Contains(t, page, "<body>\n</body>")

	page = doc.RenderPage(c, PageOptions{})
	assert.Contains(t, page, "<title>Untitled</title>")
}
