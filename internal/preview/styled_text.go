package preview

// TextStyleKind describes a semantic style for a preview segment.
type TextStyleKind int

const (
	TextStylePlain TextStyleKind = iota
	TextStyleEmphasis
	TextStyleStrong
	TextStyleStrike
	TextStyleCode
	TextStyleCodeBlock
	TextStyleLink
	TextStyleHeading
	TextStyleRule
	TextStyleQuote
)

// Segment is a chunk of text with an associated style.
type Segment struct {
	Text  string
	Style TextStyleKind
}

// PlainText concatenates the text of a rendered line.
func PlainText(line []Segment) string {
	if len(line) == 0 {
		return ""
	}
	total := 0
	for _, seg := range line {
		total += len(seg.Text)
	}
	buf := make([]byte, 0, total)
	for _, seg := range line {
		buf = append(buf, seg.Text...)
	}
	return string(buf)
}

func isRuleLine(line []Segment) bool {
	if len(line) == 0 {
		return false
	}
	for _, seg := range line {
		if seg.Style != TextStyleRule {
			return false
		}
	}
	return true
}
