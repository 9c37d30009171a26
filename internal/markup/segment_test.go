package markup

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegment(t *testing.T) {
	src := strings.Join([]string{
		"# T",
		"",
		"para",
		"more",
		"```go",
		"x",
		"```",
		"- a",
		"2. b",
		"> q",
		"> r",
		"---",
	}, "\n")

	want := []Block{
		{Kind: Heading, Level: 1, Lines: []string{"T"}, Start: 1, End: 1},
		{Kind: Paragraph, Lines: []string{"para", "more"}, Start: 3, End: 4},
		{Kind: CodeFence, Verbatim: true, Info: "go", Lines: []string{"x"}, Start: 5, End: 7},
		{Kind: UnorderedListItem, Lines: []string{"a"}, Start: 8, End: 8},
		{Kind: OrderedListItem, Number: 2, Lines: []string{"b"}, Start: 9, End: 9},
		{Kind: BlockQuote, Lines: []string{"q", "r"}, Start: 10, End: 11},
		{Kind: HorizontalRule, Start: 12, End: 12},
	}

	if diff := cmp.Diff(want, Segment(src)); diff != "" {
		t.Fatalf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentCoversEveryNonBlankLine(t *testing.T) {
	src := "a\n\n# h\n- x\n- y\n\n```\n\ncode\n"
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")

	covered := make(map[int]bool)
	prevEnd := 0
	for _, b := range Segment(src) {
		if b.Start <= prevEnd {
			t.Fatalf("block %v overlaps previous block ending at %d", b, prevEnd)
		}
		if b.End < b.Start {
			t.Fatalf("block %v ends before it starts", b)
		}
		for n := b.Start; n <= b.End; n++ {
			covered[n] = true
		}
		prevEnd = b.End
	}

	inFence := false
	for idx, line := range lines {
		n := idx + 1
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
		}
		if (inFence || strings.TrimSpace(line) != "") && !covered[n] {
			t.Fatalf("line %d %q not covered by any block", n, line)
		}
	}
}

func TestSegmentUnterminatedFence(t *testing.T) {
	blocks := Segment("```\n# not a heading\n\n- nor a list")
	if len(blocks) != 1 {
		t.Fatalf("expected a single fence block, got %d: %v", len(blocks), blocks)
	}
	want := []string{"# not a heading", "", "- nor a list"}
	if diff := cmp.Diff(want, blocks[0].Lines); diff != "" {
		t.Fatalf("fence lines mismatch (-want +got):\n%s", diff)
	}
	if blocks[0].End != 4 {
		t.Fatalf("expected fence to end on line 4, got %d", blocks[0].End)
	}
}

func TestSegmentFenceIndentation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "three spaces opens and closes",
			in:   "   ```\ncode\n   ```\nafter",
			want: []Block{
				{Kind: CodeFence, Verbatim: true, Lines: []string{"code"}, Start: 1, End: 3},
				{Kind: Paragraph, Lines: []string{"after"}, Start: 4, End: 4},
			},
		},
		{
			name: "four spaces is paragraph text",
			in:   "    ```\n    code\n    ```\nafter",
			want: []Block{
				{Kind: Paragraph, Lines: []string{"```", "code", "```", "after"}, Start: 1, End: 4},
			},
		},
		{
			name: "deep closer stays inside the fence",
			in:   "```\n    ```\n```",
			want: []Block{
				{Kind: CodeFence, Verbatim: true, Lines: []string{"    ```"}, Start: 1, End: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Segment(tt.in)); diff != "" {
				t.Fatalf("Segment(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestDetectFence(t *testing.T) {
	tests := []struct {
		in     string
		ok     bool
		delim  rune
		length int
		info   string
	}{
		{"```", true, '`', 3, ""},
		{"````python extra", true, '`', 4, "python"},
		{"~~~ ruby", true, '~', 3, "ruby"},
		{"``", false, 0, 0, ""},
		{"```a```", false, 0, 0, ""},
		{"~~~a~", true, '~', 3, "a~"},
		{"text", false, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := detectFence(tt.in)
			if ok != tt.ok {
				t.Fatalf("detectFence(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.delimiter != tt.delim || got.length != tt.length || got.info != tt.info {
				t.Fatalf("detectFence(%q) = %+v", tt.in, got)
			}
		})
	}
}

func TestParseListMarker(t *testing.T) {
	tests := []struct {
		in      string
		ok      bool
		ordered bool
		number  int
		content string
	}{
		{"- item", true, false, 0, "item"},
		{"  * item", true, false, 0, "item"},
		{"+\titem", true, false, 0, "item"},
		{"-item", false, false, 0, ""},
		{"12. twelve", true, true, 12, "twelve"},
		{"3) three", true, true, 3, "three"},
		{"3.three", false, false, 0, ""},
		{"99999999999999999999. big", true, true, 1, "big"},
		{"1.", false, false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseListMarker(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseListMarker(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.ordered != tt.ordered || got.number != tt.number || got.content != tt.content {
				t.Fatalf("parseListMarker(%q) = %+v", tt.in, got)
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	blocks := Segment("- a\n- b\n\n- c\n1. d\ntext")
	runs := ListRuns(blocks)

	var sizes []int
	for _, run := range runs {
		sizes = append(sizes, len(run))
	}
	if diff := cmp.Diff([]int{2, 1, 1, 1}, sizes); diff != "" {
		t.Fatalf("run sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitWithoutPositionsGroupsItems(t *testing.T) {
	blocks := []Block{
		{Kind: UnorderedListItem, Lines: []string{"a"}},
		{Kind: UnorderedListItem, Lines: []string{"b"}},
		{Kind: Heading, Level: 9, Lines: []string{"h"}},
	}
	got := Emit(blocks)
	want := "<ul><li>a</li><li>b</li></ul>\n<h6>h</h6>"
	if got != want {
		t.Fatalf("Emit = %q, want %q", got, want)
	}
}

func TestKindString(t *testing.T) {
	if got := OrderedListItem.String(); got != "olitem" {
		t.Fatalf("OrderedListItem.String() = %q", got)
	}
	if got := Kind(42).String(); got != "unknown" {
		t.Fatalf("Kind(42).String() = %q", got)
	}
}
