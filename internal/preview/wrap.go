package preview

import (
	"strings"

	"github.com/kk-code-lab/rmark/internal/textutil"
)

// Wrap breaks styled lines at maxWidth display columns. Rule lines are left
// whole; the viewer stretches them to the screen width.
func Wrap(lines [][]Segment, maxWidth int) [][]Segment {
	out := make([][]Segment, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapSegments(line, maxWidth)...)
	}
	return out
}

func wrapSegments(segments []Segment, maxWidth int) [][]Segment {
	if maxWidth <= 0 || isRuleLine(segments) {
		return [][]Segment{segments}
	}
	var lines [][]Segment
	var current []Segment
	currentWidth := 0

	flush := func() {
		line := make([]Segment, len(current))
		copy(line, current)
		lines = append(lines, line)
		current = current[:0]
		currentWidth = 0
	}

	for _, seg := range segments {
		text := textutil.SanitizeTerminalText(seg.Text)
		if text == "" {
			continue
		}
		var buf strings.Builder
		for _, ru := range text {
			w := textutil.RuneWidth(ru)
			if currentWidth > 0 && currentWidth+w > maxWidth {
				if buf.Len() > 0 {
					current = append(current, Segment{Text: buf.String(), Style: seg.Style})
					buf.Reset()
				}
				flush()
			}
			if w > maxWidth {
				continue
			}
			buf.WriteRune(ru)
			currentWidth += w
		}
		if buf.Len() > 0 {
			current = append(current, Segment{Text: buf.String(), Style: seg.Style})
		}
	}
	if len(current) > 0 || len(lines) == 0 {
		line := make([]Segment, len(current))
		copy(line, current)
		lines = append(lines, line)
	}
	return lines
}
