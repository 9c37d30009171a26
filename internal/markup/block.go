package markup

// Kind identifies the structural role of a Block.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	HorizontalRule
	BlockQuote
	CodeFence
	UnorderedListItem
	OrderedListItem
)

var kindNames = [...]string{
	Paragraph:         "paragraph",
	Heading:           "heading",
	HorizontalRule:    "hrule",
	BlockQuote:        "blockquote",
	CodeFence:         "codefence",
	UnorderedListItem: "ulitem",
	OrderedListItem:   "olitem",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsListItem reports whether blocks of this kind are grouped into list runs.
func (k Kind) IsListItem() bool {
	return k == UnorderedListItem || k == OrderedListItem
}

// Block is one closed structural unit of the source text.
//
// Lines holds the content portion of the source lines: markers such as "# ",
// "> " or "- " are already stripped, and fence delimiter lines are not
// included. Start and End are 1-based source line numbers (inclusive) and do
// cover fence delimiters. A zero Start means the position is unknown.
type Block struct {
	Kind     Kind
	Level    int
	Lines    []string
	Verbatim bool

	// Info is the language tag of a code fence.
	Info string
	// Number is the marker value of an ordered list item.
	Number int

	Start int
	End   int
}

// adjacentTo reports whether b starts on the line right after prev ends.
func (b Block) adjacentTo(prev Block) bool {
	if b.Start == 0 || prev.End == 0 {
		return true
	}
	return b.Start == prev.End+1
}
