package markup

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kk-code-lab/rmark/internal/textutil"
)

const (
	maxHeadingLevel  = 6
	minFenceLength   = 3
	fenceIndentLimit = 3
)

// segmenter holds the per-call scan state. It is never shared between calls.
type segmenter struct {
	opts   Options
	blocks []Block
	open   *Block
	fence  fenceSpec
}

func (c *Converter) segment(src string) []Block {
	src = strings.TrimSuffix(textutil.NormalizeSource(src, c.opts.NormalizeUnicode), "\n")
	if src == "" {
		return nil
	}
	s := &segmenter{opts: c.opts}
	for idx, line := range strings.Split(src, "\n") {
		s.feed(idx+1, line)
	}
	s.closeOpen()
	return s.blocks
}

func (s *segmenter) feed(n int, line string) {
	trimmed := strings.TrimSpace(line)

	if s.inFence() {
		if closing, ok := detectFence(trimmed); ok && s.fence.closedBy(closing) && leadingSpaces(line) <= fenceIndentLimit {
			s.open.End = n
			s.closeOpen()
			return
		}
		s.open.Lines = append(s.open.Lines, s.codeLine(line))
		s.open.End = n
		return
	}

	// Fences open and close under the same indentation limit; a deeper
	// "```" line is ordinary text.
	if fence, ok := detectFence(trimmed); ok && leadingSpaces(line) <= fenceIndentLimit {
		s.closeOpen()
		s.fence = fence
		s.openBlock(Block{Kind: CodeFence, Verbatim: true, Info: fence.info, Start: n, End: n})
		return
	}

	if level, text, ok := parseHeading(trimmed); ok {
		s.closeOpen()
		s.appendClosed(Block{Kind: Heading, Level: level, Lines: []string{text}, Start: n, End: n})
		return
	}

	if isHorizontalRule(trimmed) {
		s.closeOpen()
		s.appendClosed(Block{Kind: HorizontalRule, Start: n, End: n})
		return
	}

	if content, ok := parseQuoteLine(line); ok {
		if s.open != nil && s.open.Kind == BlockQuote {
			s.open.Lines = append(s.open.Lines, content)
			s.open.End = n
			return
		}
		s.closeOpen()
		s.openBlock(Block{Kind: BlockQuote, Lines: []string{content}, Start: n, End: n})
		return
	}

	if marker, ok := parseListMarker(line); ok {
		s.closeOpen()
		item := Block{Kind: UnorderedListItem, Lines: []string{marker.content}, Start: n, End: n}
		if marker.ordered {
			item.Kind = OrderedListItem
			item.Number = marker.number
		}
		s.appendClosed(item)
		return
	}

	if isBlankLine(line) {
		s.closeOpen()
		return
	}

	content := strings.TrimLeft(line, " \t")
	if s.open != nil && s.open.Kind == Paragraph {
		s.open.Lines = append(s.open.Lines, content)
		s.open.End = n
		return
	}
	s.closeOpen()
	s.openBlock(Block{Kind: Paragraph, Lines: []string{content}, Start: n, End: n})
}

func (s *segmenter) inFence() bool {
	return s.open != nil && s.open.Kind == CodeFence
}

func (s *segmenter) codeLine(line string) string {
	if s.opts.TabWidth > 0 {
		return textutil.ExpandTabs(line, s.opts.TabWidth)
	}
	return line
}

func (s *segmenter) openBlock(b Block) {
	s.open = &b
}

// closeOpen finalizes the open block, if any. An unterminated fence is closed
// here too, keeping every line after its opening delimiter as content.
func (s *segmenter) closeOpen() {
	if s.open == nil {
		return
	}
	s.appendClosed(*s.open)
	s.open = nil
}

func (s *segmenter) appendClosed(b Block) {
	s.blocks = append(s.blocks, b)
}

type fenceSpec struct {
	delimiter rune
	length    int
	info      string
}

func (f fenceSpec) closedBy(other fenceSpec) bool {
	return other.info == "" && other.delimiter == f.delimiter && other.length >= f.length
}

func detectFence(trimmed string) (fenceSpec, bool) {
	if trimmed == "" {
		return fenceSpec{}, false
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if first != '`' && first != '~' {
		return fenceSpec{}, false
	}
	count := countRepeatRune(trimmed, first)
	if count < minFenceLength {
		return fenceSpec{}, false
	}
	info := strings.TrimSpace(trimmed[count:])
	if first == '`' && strings.ContainsRune(info, '`') {
		// "```code```" is an inline code span, not a fence.
		return fenceSpec{}, false
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		info = fields[0]
	}
	return fenceSpec{delimiter: first, length: count, info: info}, true
}

func parseHeading(trimmed string) (int, string, bool) {
	level := countRepeatRune(trimmed, '#')
	if level == 0 || level > maxHeadingLevel {
		return 0, "", false
	}
	rest := trimmed[level:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return 0, "", false
	}
	content := stripClosingHashes(strings.TrimSpace(rest))
	if content == "" {
		return 0, "", false
	}
	return level, content, true
}

// stripClosingHashes drops an optional trailing "###" run that is separated
// from the heading text by whitespace.
func stripClosingHashes(content string) string {
	end := len(content)
	for end > 0 && content[end-1] == '#' {
		end--
	}
	if end == len(content) || end == 0 {
		return content
	}
	if content[end-1] != ' ' && content[end-1] != '\t' {
		return content
	}
	return strings.TrimRight(content[:end], " \t")
}

func isHorizontalRule(trimmed string) bool {
	switch trimmed {
	case "---", "***", "___":
		return true
	default:
		return false
	}
}

func parseQuoteLine(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "> "):
		return trimmed[2:], true
	case strings.TrimRight(trimmed, " \t") == ">":
		return "", true
	default:
		return "", false
	}
}

type listMarker struct {
	ordered bool
	number  int
	content string
}

func parseListMarker(line string) (listMarker, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return listMarker{}, false
	}

	if isBullet(trimmed[0]) {
		if len(trimmed) < 2 || !isSpaceOrTab(rune(trimmed[1])) {
			return listMarker{}, false
		}
		return listMarker{content: strings.TrimLeft(trimmed[2:], " \t")}, true
	}

	j := 0
	for j < len(trimmed) && unicode.IsDigit(rune(trimmed[j])) {
		j++
	}
	if j == 0 || j+1 >= len(trimmed) {
		return listMarker{}, false
	}
	if trimmed[j] != '.' && trimmed[j] != ')' {
		return listMarker{}, false
	}
	if !isSpaceOrTab(rune(trimmed[j+1])) {
		return listMarker{}, false
	}
	num, err := strconv.Atoi(trimmed[:j])
	if err != nil {
		// Digit runs too long for an int still mark a list item.
		num = 1
	}
	return listMarker{
		ordered: true,
		number:  num,
		content: strings.TrimLeft(trimmed[j+2:], " \t"),
	}, true
}

// joinLines merges the content lines of a paragraph or quote with single
// spaces, skipping empty lines. With hardBreaks set, a line ending in two or
// more spaces or in an odd number of backslashes is joined with '\n' instead,
// which Substitute renders as <br>.
func joinLines(lines []string, hardBreaks bool) string {
	var b strings.Builder
	hardPrev := false
	written := false
	last := len(lines) - 1
	for idx, line := range lines {
		content, hard := normalizeParagraphLine(line)
		if !hardBreaks || idx == last {
			if hard {
				content = strings.TrimRight(line, " \t")
			}
			hard = false
		}
		if content == "" {
			continue
		}
		if written {
			if hardPrev {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(content)
		written = true
		hardPrev = hard
	}
	return b.String()
}

func normalizeParagraphLine(line string) (string, bool) {
	raw := strings.TrimRight(line, "\t")
	trimmed := strings.TrimRight(raw, " ")
	hardBreak := len(raw)-len(trimmed) >= 2
	content := trimmed

	if strings.HasSuffix(content, "\\") && trailingBackslashes(content)%2 == 1 {
		hardBreak = true
		content = content[:len(content)-1]
	}
	if hardBreak {
		content = strings.TrimRight(content, " ")
	}
	return content, hardBreak
}

func trailingBackslashes(s string) int {
	count := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		count++
	}
	return count
}

func leadingSpaces(line string) int {
	count := 0
	for _, ch := range line {
		switch ch {
		case ' ', '\t':
			count++
		default:
			return count
		}
	}
	return count
}

func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isBullet(ch byte) bool {
	return ch == '-' || ch == '+' || ch == '*'
}

func isSpaceOrTab(r rune) bool {
	return r == ' ' || r == '\t'
}

func countRepeatRune(text string, target rune) int {
	n := 0
	for _, r := range text {
		if r != target {
			break
		}
		n++
	}
	return n
}
