package preview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kk-code-lab/rmark/internal/markup"
)

func plainLines(lines [][]Segment) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = PlainText(line)
	}
	return out
}

func TestLines(t *testing.T) {
	src := strings.Join([]string{
		"# Title *x*",
		"",
		"para **b** [l](http://x)",
		"",
		"- a",
		"- b",
		"3. c",
		"",
		"> q",
		"",
		"```go",
		"x",
		"```",
		"---",
	}, "\n")
	c := markup.New(markup.DefaultOptions())

	got := plainLines(Lines(c, c.Segment(src)))
	want := []string{
		"# Title x",
		"",
		"para b l (http://x)",
		"",
		"• a",
		"• b",
		"",
		"3. c",
		"",
		"│ q",
		"",
		"    [go]",
		"    x",
		"",
		"─",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLinesHardBreakSplitsLine(t *testing.T) {
	c := markup.New(markup.DefaultOptions())
	got := plainLines(Lines(c, c.Segment("one  \ntwo\n\n- item\\\nnext")))
	want := []string{"one", "two", "", "• item\\", "", "next"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineLinesStyles(t *testing.T) {
	got := inlineLines("<strong>b</strong> <code>c&lt;</code> <em>i</em> <s>s</s>", TextStylePlain)
	want := [][]Segment{{
		{Text: "b", Style: TextStyleStrong},
		{Text: " ", Style: TextStylePlain},
		{Text: "c<", Style: TextStyleCode},
		{Text: " ", Style: TextStylePlain},
		{Text: "i", Style: TextStyleEmphasis},
		{Text: " ", Style: TextStylePlain},
		{Text: "s", Style: TextStyleStrike},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inlineLines mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineLinesImageAndHeading(t *testing.T) {
	got := inlineLines(`<em>a</em> <img src="p.png" alt="pic">`, TextStyleHeading)
	want := [][]Segment{{
		{Text: "a pic", Style: TextStyleHeading},
		{Text: " (", Style: TextStylePlain},
		{Text: "p.png", Style: TextStyleLink},
		{Text: ")", Style: TextStylePlain},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inlineLines mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap(t *testing.T) {
	lines := [][]Segment{
		{{Text: "abc", Style: TextStyleStrong}, {Text: "defg", Style: TextStylePlain}},
		{{Text: "─", Style: TextStyleRule}},
		nil,
		{{Text: "你好世界", Style: TextStylePlain}},
	}
	got := plainLines(Wrap(lines, 4))
	want := []string{"abcd", "efg", "─", "", "你好", "世界"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Wrap mismatch (-want +got):\n%s", diff)
	}
}
