package markup

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenMark delimits stash references inside text being substituted. Source
// NUL bytes are replaced before substitution starts, so the marker cannot be
// forged by input.
const tokenMark = '\x00'

type tokenRole int

const (
	roleAtom tokenRole = iota
	roleOpen
	roleClose
)

type stashed struct {
	html string
	role tokenRole
}

// stash holds markup already emitted during one Substitute call. Later passes
// only see opaque references to it.
type stash struct {
	parts []stashed
}

func (st *stash) put(html string, role tokenRole) string {
	st.parts = append(st.parts, stashed{html: html, role: role})
	return string(tokenMark) + strconv.Itoa(len(st.parts)-1) + string(tokenMark)
}

// readToken parses a reference starting at s[i]. It returns the stash index
// and the position just past the reference.
func readToken(s string, i int) (int, int, bool) {
	if i >= len(s) || s[i] != tokenMark {
		return 0, i, false
	}
	j := i + 1
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i+1 || j >= len(s) || s[j] != tokenMark {
		return 0, i, false
	}
	idx, err := strconv.Atoi(s[i+1 : j])
	if err != nil {
		return 0, i, false
	}
	return idx, j + 1, true
}

func (st *stash) restore(s string) string {
	if !strings.ContainsRune(s, tokenMark) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if idx, next, ok := readToken(s, i); ok {
			b.WriteString(st.parts[idx].html)
			i = next
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// plain restores s and drops every tag, leaving escaped text suitable for an
// attribute value.
func (st *stash) plain(s string) string {
	return stripTags(st.restore(s))
}

// Span is one delimiter-based inline substitution: text wrapped in Delim is
// replaced by Open + text + Close.
type Span struct {
	Delim string
	Open  string
	Close string
}

// delimiterSpans lists the delimiter substitutions in the order they run.
// Combined strong emphasis must come before strong, which must come before
// emphasis, or the longer delimiters get split by the shorter patterns.
var delimiterSpans = []Span{
	{Delim: "***", Open: "<strong><em>", Close: "</em></strong>"},
	{Delim: "___", Open: "<strong><em>", Close: "</em></strong>"},
	{Delim: "**", Open: "<strong>", Close: "</strong>"},
	{Delim: "__", Open: "<strong>", Close: "</strong>"},
	{Delim: "*", Open: "<em>", Close: "</em>"},
	{Delim: "_", Open: "<em>", Close: "</em>"},
	{Delim: "~~", Open: "<s>", Close: "</s>"},
}

func (c *Converter) substitute(text string) string {
	if text == "" {
		return ""
	}
	st := &stash{}
	s := strings.ReplaceAll(text, string(tokenMark), "\uFFFD")
	s = extractCodeAndEscapes(s, st)
	s = escapeHTML(s)
	s = c.replaceLinks(s, st, true)
	s = c.replaceLinks(s, st, false)
	for _, span := range delimiterSpans {
		s = replaceDelimited(s, st, span)
	}
	s = strings.ReplaceAll(s, "\n", "<br>")
	return st.restore(s)
}

// extractCodeAndEscapes stashes inline code spans and backslash escapes in a
// single left-to-right scan, so escaped backticks never open a code span and
// code content is never rewritten by later passes.
func extractCodeAndEscapes(s string, st *stash) string {
	var ticks *backtickIndex
	if strings.IndexByte(s, '`') != -1 {
		ticks = indexBackticks(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch ch := s[i]; {
		case ch == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]):
			b.WriteString(st.put(escapeHTML(s[i+1:i+2]), roleAtom))
			i += 2
		case ch == '`':
			run := countRepeatByte(s[i:], '`')
			end := ticks.closer(i+run, run)
			if end == -1 {
				b.WriteString(s[i : i+run])
				i += run
				continue
			}
			code := normalizeCodeSpan(s[i+run : end])
			b.WriteString(st.put("<code>"+escapeHTML(code)+"</code>", roleAtom))
			i = end + run
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return b.String()
}

// backtickIndex lists the start of every maximal backtick run by run length.
// Lookups move forward only, matching the left-to-right code span scan.
type backtickIndex struct {
	starts map[int][]int
	cursor map[int]int
}

func indexBackticks(s string) *backtickIndex {
	idx := &backtickIndex{starts: make(map[int][]int), cursor: make(map[int]int)}
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		run := countRepeatByte(s[i:], '`')
		idx.starts[run] = append(idx.starts[run], i)
		i += run
	}
	return idx
}

// closer returns the start of the first run of exactly length backticks at or
// after from, or -1.
func (idx *backtickIndex) closer(from, length int) int {
	starts := idx.starts[length]
	k := idx.cursor[length]
	for k < len(starts) && starts[k] < from {
		k++
	}
	idx.cursor[length] = k
	if k == len(starts) {
		return -1
	}
	return starts[k]
}

func normalizeCodeSpan(code string) string {
	code = strings.ReplaceAll(code, "\n", " ")
	if len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.TrimSpace(code) != "" {
		return code[1 : len(code)-1]
	}
	return code
}

// replaceLinks rewrites images (images=true) or links. Image syntax contains
// link syntax, so images must run first.
func (c *Converter) replaceLinks(s string, st *stash, images bool) string {
	if strings.IndexByte(s, '[') == -1 {
		return s
	}
	brackets := matchPairs(s, '[', ']')
	parens := matchPairs(s, '(', ')')
	spaces := nextSpaces(s)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		start := i
		if images {
			if s[i] != '!' || i+1 >= len(s) || s[i+1] != '[' {
				b.WriteByte(s[i])
				i++
				continue
			}
			start = i + 1
		} else if s[i] != '[' {
			b.WriteByte(s[i])
			i++
			continue
		}

		label, dest, next, ok := parseLinkTarget(s, start, brackets, parens, spaces)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		if images {
			b.WriteString(c.imageMarkup(label, dest, st))
		} else {
			b.WriteString(c.linkMarkup(label, dest, st))
		}
		i = next
	}
	return b.String()
}

// parseLinkTarget reads "[label](dest)" with s[start] == '['. brackets and
// parens come from matchPairs over s, spaces from nextSpaces.
func parseLinkTarget(s string, start int, brackets, parens, spaces []int) (label, dest string, next int, ok bool) {
	endLabel := brackets[start]
	if endLabel == -1 {
		return "", "", 0, false
	}
	open := endLabel + 1
	if open >= len(s) || s[open] != '(' {
		return "", "", 0, false
	}
	endDest := parens[open]
	if endDest == -1 {
		return "", "", 0, false
	}
	raw := s[open+1 : endDest]
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	dest = strings.TrimRightFunc(raw[lead:], unicode.IsSpace)
	if destStart := open + 1 + lead; dest != "" && spaces[destStart] < destStart+len(dest) {
		return "", "", 0, false
	}
	return s[start+1 : endLabel], dest, endDest + 1, true
}

func (c *Converter) imageMarkup(label, dest string, st *stash) string {
	alt := st.plain(label)
	href, ok := c.destination(st.restore(dest), true)
	if !ok {
		return st.put(alt, roleAtom)
	}
	return st.put(`<img src="`+href+`" alt="`+alt+`">`, roleAtom)
}

func (c *Converter) linkMarkup(label, dest string, st *stash) string {
	href, ok := c.destination(st.restore(dest), false)
	if !ok {
		return label
	}
	return st.put(`<a href="`+href+`">`, roleOpen) + label + st.put("</a>", roleClose)
}

// destination returns the attribute-ready form of an escaped destination.
func (c *Converter) destination(escaped string, image bool) (string, bool) {
	if !c.opts.SafeLinks {
		return escaped, true
	}
	return sanitizeLinkDestination(unescapeHTML(escaped), image)
}

// matchPairs maps every opener byte in s to the index of its matching closer
// byte, or -1. Entries for other positions are -1.
func matchPairs(s string, opener, closer byte) []int {
	match := make([]int, len(s))
	var pending []int
	for i := 0; i < len(s); i++ {
		match[i] = -1
		switch s[i] {
		case opener:
			pending = append(pending, i)
		case closer:
			if len(pending) > 0 {
				match[pending[len(pending)-1]] = i
				pending = pending[:len(pending)-1]
			}
		}
	}
	return match
}

// nextSpaces maps each position to the index of the first space, tab or
// newline at or after it, or len(s).
func nextSpaces(s string) []int {
	next := make([]int, len(s)+1)
	next[len(s)] = len(s)
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\n':
			next[i] = i
		default:
			next[i] = next[i+1]
		}
	}
	return next
}

// delimiterRun is a maximal run of one delimiter byte outside stash references.
type delimiterRun struct {
	start, end int
	// depth counts the open references enclosing the run.
	depth int
	// gapMin is the lowest depth between the previous run and this one.
	gapMin int
	// before counts delimiter bytes ahead of the run.
	before int
	// closeAt is where the closer for an opener ending this run starts, or -1.
	closeAt int
}

// replaceDelimited applies one Span over s. Each opener pairs with the nearest
// closer that can close it and encloses balanced markup.
func replaceDelimited(s string, st *stash, span Span) string {
	delim := span.Delim[0]
	n := len(span.Delim)
	if strings.IndexByte(s, delim) == -1 {
		return s
	}
	runs := scanDelimiterRuns(s, st, delim)
	pairClosers(s, runs, delim, n)

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for _, run := range runs {
		// Runs already consumed by a pair are skipped; a closer that ends
		// inside a run leaves the rest of it as a shorter opener candidate.
		if run.end <= pos {
			continue
		}
		openAt := run.end - n
		if run.end-max(run.start, pos) < n || !canOpen(s, openAt, n, delim) || run.closeAt == -1 {
			continue
		}
		b.WriteString(s[pos:openAt])
		b.WriteString(st.put(span.Open, roleOpen))
		b.WriteString(s[run.end:run.closeAt])
		b.WriteString(st.put(span.Close, roleClose))
		pos = run.closeAt + n
	}
	b.WriteString(s[pos:])
	return b.String()
}

func scanDelimiterRuns(s string, st *stash, delim byte) []delimiterRun {
	var runs []delimiterRun
	depth, lowest, count := 0, 0, 0
	for i := 0; i < len(s); {
		if idx, next, ok := readToken(s, i); ok {
			switch st.parts[idx].role {
			case roleOpen:
				depth++
			case roleClose:
				depth--
				lowest = min(lowest, depth)
			}
			i = next
			continue
		}
		if s[i] != delim {
			i++
			continue
		}
		run := countRepeatByte(s[i:], delim)
		runs = append(runs, delimiterRun{start: i, end: i + run, depth: depth, gapMin: lowest, before: count})
		count += run
		lowest = depth
		i += run
	}
	return runs
}

// pairClosers fills closeAt for every run in one right-to-left pass. A closer
// qualifies when it sits at the opener's depth with no lower depth in between,
// which is exactly when the markup between them is balanced.
func pairClosers(s string, runs []delimiterRun, delim byte, n int) {
	type level struct {
		depth int
		// nearest closer start by parity of the delimiter count ahead of it
		closeAt [2]int
	}
	var levels []level
	for r := len(runs) - 1; r >= 0; r-- {
		run := &runs[r]
		if r+1 < len(runs) {
			gap := runs[r+1].gapMin
			for len(levels) > 0 && levels[len(levels)-1].depth > gap {
				levels = levels[:len(levels)-1]
			}
		}
		top := -1
		if len(levels) > 0 && levels[len(levels)-1].depth == run.depth {
			top = len(levels) - 1
		}

		run.closeAt = -1
		if top != -1 {
			run.closeAt = levels[top].closeAt[(run.before+run.end-run.start)%2]
		}

		candidates := closerCandidates(s, *run, delim, n)
		if top == -1 {
			levels = append(levels, level{depth: run.depth, closeAt: [2]int{-1, -1}})
			top = len(levels) - 1
		}
		for parity, at := range candidates {
			if at != -1 {
				levels[top].closeAt[parity] = at
			}
		}
	}
}

// closerCandidates returns where run would close an opener, indexed by the
// parity of the delimiter count before that opener's content. A run longer
// than the delimiter closes at its end when the content would otherwise
// strand an inner opener of the same delimiter.
func closerCandidates(s string, run delimiterRun, delim byte, n int) [2]int {
	out := [2]int{-1, -1}
	length := run.end - run.start
	if length < n {
		return out
	}
	for parity := range out {
		at := run.start
		if length > n && (run.before-parity)%2 != 0 {
			at = run.end - n
		}
		if canClose(s, at, n, delim) {
			out[parity] = at
		}
	}
	return out
}

// canOpen and canClose look past the whole delimiter run for '_', so a run
// touching a word on that side stays literal.
func canOpen(s string, at, n int, delim byte) bool {
	next, ok := runeAfter(s, at+n)
	if !ok || unicode.IsSpace(next) {
		return false
	}
	if delim == '_' {
		before := at
		for before > 0 && s[before-1] == delim {
			before--
		}
		if prev, ok := runeBefore(s, before); ok && isAlnum(prev) {
			return false
		}
	}
	return true
}

func canClose(s string, at, n int, delim byte) bool {
	prev, ok := runeBefore(s, at)
	if !ok || unicode.IsSpace(prev) {
		return false
	}
	if delim == '_' {
		after := at + n
		for after < len(s) && s[after] == delim {
			after++
		}
		if next, ok := runeAfter(s, after); ok && isAlnum(next) {
			return false
		}
	}
	return true
}

func runeAfter(s string, i int) (rune, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r, true
}

func runeBefore(s string, i int) (rune, bool) {
	if i <= 0 || i > len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r, true
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIPunct(ch byte) bool {
	return ch < utf8.RuneSelf && unicode.IsPunct(rune(ch)) || strings.IndexByte("$+<=>^`|~", ch) != -1
}

func countRepeatByte(s string, target byte) int {
	n := 0
	for n < len(s) && s[n] == target {
		n++
	}
	return n
}

func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	inTag := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '<':
			inTag = true
		case s[i] == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
