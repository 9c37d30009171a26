package preview

import (
	"strconv"
	"strings"

	"github.com/kk-code-lab/rmark/internal/markup"
	"github.com/kk-code-lab/rmark/internal/textutil"
)

const codeIndent = "    "

// Lines renders blocks as styled terminal lines. Blocks are separated by an
// empty line; items of one list run are not.
func Lines(c *markup.Converter, blocks []markup.Block) [][]Segment {
	var lines [][]Segment
	for idx, run := range markup.ListRuns(blocks) {
		rendered := renderRun(c, run)
		if idx > 0 && len(rendered) > 0 && len(lines) > 0 && len(lines[len(lines)-1]) != 0 {
			lines = append(lines, nil)
		}
		lines = append(lines, rendered...)
	}
	return lines
}

func renderRun(c *markup.Converter, run []markup.Block) [][]Segment {
	if len(run) == 0 {
		return nil
	}
	if run[0].Kind.IsListItem() {
		return renderList(c, run)
	}
	return renderBlock(c, run[0])
}

func renderBlock(c *markup.Converter, block markup.Block) [][]Segment {
	switch block.Kind {
	case markup.Heading:
		level := block.Level
		if level < 1 {
			level = 1
		}
		text := inlineLines(c.Substitute(c.BlockText(block)), TextStyleHeading)
		prefix := Segment{Text: strings.Repeat("#", level) + " ", Style: TextStyleHeading}
		text[0] = append([]Segment{prefix}, text[0]...)
		return text
	case markup.HorizontalRule:
		return [][]Segment{{{Text: "─", Style: TextStyleRule}}}
	case markup.BlockQuote:
		content := inlineLines(c.Substitute(c.BlockText(block)), TextStylePlain)
		out := make([][]Segment, 0, len(content))
		for _, line := range content {
			out = append(out, append([]Segment{{Text: "│ ", Style: TextStyleQuote}}, line...))
		}
		return out
	case markup.CodeFence:
		return renderCode(c, block)
	default:
		if block.Verbatim {
			return renderCode(c, block)
		}
		return inlineLines(c.Substitute(c.BlockText(block)), TextStylePlain)
	}
}

func renderCode(c *markup.Converter, block markup.Block) [][]Segment {
	lines := make([][]Segment, 0, len(block.Lines)+1)
	if block.Info != "" {
		lines = append(lines, []Segment{{Text: codeIndent + "[" + block.Info + "]", Style: TextStyleCode}})
	}
	tabWidth := c.Options().TabWidth
	if tabWidth <= 0 {
		tabWidth = textutil.DefaultTabWidth
	}
	for _, line := range block.Lines {
		lines = append(lines, []Segment{{Text: codeIndent + textutil.ExpandTabs(line, tabWidth), Style: TextStyleCodeBlock}})
	}
	return lines
}

func renderList(c *markup.Converter, run []markup.Block) [][]Segment {
	var lines [][]Segment
	for idx, item := range run {
		bullet := "•"
		if item.Kind == markup.OrderedListItem {
			bullet = strconv.Itoa(run[0].Number+idx) + "."
		}
		content := inlineLines(c.Substitute(c.BlockText(item)), TextStylePlain)
		first := append([]Segment{{Text: bullet + " ", Style: TextStylePlain}}, content[0]...)
		lines = append(lines, first)
		pad := strings.Repeat(" ", textutil.DisplayWidth(bullet)+1)
		for _, line := range content[1:] {
			lines = append(lines, append([]Segment{{Text: pad, Style: TextStylePlain}}, line...))
		}
	}
	return lines
}
