package markup

import (
	"strconv"
	"strings"
)

// Emit renders blocks in order. Adjacent list items of the same kind share one
// list container.
func (c *Converter) Emit(blocks []Block) string {
	var b strings.Builder
	for i := 0; i < len(blocks); {
		if i > 0 {
			b.WriteByte('\n')
		}
		if blocks[i].Kind.IsListItem() {
			end := listRunEnd(blocks, i)
			c.emitList(&b, blocks[i:end])
			i = end
			continue
		}
		c.emitBlock(&b, blocks[i])
		i++
	}
	return b.String()
}

// ListRuns groups blocks into list runs. Non-list blocks come back as runs of
// length one.
func ListRuns(blocks []Block) [][]Block {
	var runs [][]Block
	for i := 0; i < len(blocks); {
		end := i + 1
		if blocks[i].Kind.IsListItem() {
			end = listRunEnd(blocks, i)
		}
		runs = append(runs, blocks[i:end])
		i = end
	}
	return runs
}

func listRunEnd(blocks []Block, start int) int {
	kind := blocks[start].Kind
	end := start + 1
	for end < len(blocks) && blocks[end].Kind == kind && blocks[end].adjacentTo(blocks[end-1]) {
		end++
	}
	return end
}

func (c *Converter) emitBlock(b *strings.Builder, block Block) {
	switch block.Kind {
	case Heading:
		level := clampLevel(block.Level)
		tag := "h" + strconv.Itoa(level)
		b.WriteString("<" + tag + ">")
		b.WriteString(c.substitute(c.text(block)))
		b.WriteString("</" + tag + ">")
	case HorizontalRule:
		b.WriteString("<hr>")
	case BlockQuote:
		b.WriteString("<blockquote><p>")
		b.WriteString(c.substitute(c.text(block)))
		b.WriteString("</p></blockquote>")
	case CodeFence:
		c.emitCode(b, block)
	default:
		if block.Verbatim {
			c.emitCode(b, block)
			return
		}
		b.WriteString("<p>")
		b.WriteString(c.substitute(c.text(block)))
		b.WriteString("</p>")
	}
}

func (c *Converter) emitCode(b *strings.Builder, block Block) {
	b.WriteString("<pre><code")
	if block.Info != "" {
		b.WriteString(` class="language-`)
		b.WriteString(escapeHTML(block.Info))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	for _, line := range block.Lines {
		b.WriteString(escapeHTML(line))
		b.WriteByte('\n')
	}
	b.WriteString("</code></pre>")
}

func (c *Converter) emitList(b *strings.Builder, run []Block) {
	tag := "ul"
	if run[0].Kind == OrderedListItem {
		tag = "ol"
	}
	b.WriteString("<" + tag)
	if tag == "ol" && run[0].Number != 1 {
		b.WriteString(` start="` + strconv.Itoa(run[0].Number) + `"`)
	}
	b.WriteString(">")
	for _, item := range run {
		b.WriteString("<li>")
		b.WriteString(c.substitute(c.text(item)))
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
}

// text returns the inline text of a non-verbatim block.
func (c *Converter) text(block Block) string {
	return joinLines(block.Lines, c.opts.HardBreaks)
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > maxHeadingLevel:
		return maxHeadingLevel
	default:
		return level
	}
}
