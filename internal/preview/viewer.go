package preview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rmark/internal/textutil"
)

// Viewer shows rendered lines in a scrolling full-screen view with a status
// line at the bottom.
type Viewer struct {
	screen tcell.Screen
	title  string
	source [][]Segment
	theme  Theme

	wrapped   [][]Segment
	wrapWidth int
	offset    int
}

// NewViewer returns a viewer drawing to screen. The screen must already be
// initialized; the caller owns its lifetime.
func NewViewer(screen tcell.Screen, title string, lines [][]Segment) *Viewer {
	return &Viewer{
		screen:    screen,
		title:     title,
		source:    lines,
		theme:     DefaultTheme(),
		wrapWidth: -1,
	}
}

// SetLines replaces the content, keeping the scroll position where possible.
func (v *Viewer) SetLines(lines [][]Segment) {
	v.source = lines
	v.wrapWidth = -1
	v.clampOffset()
}

// Offset returns the index of the first visible wrapped line.
func (v *Viewer) Offset() int {
	return v.offset
}

// Run draws and handles input until the user quits.
func (v *Viewer) Run() error {
	v.Draw()
	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
			v.Draw()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				return nil
			}
			v.Draw()
		}
	}
}

// HandleKey applies one key press and reports whether the viewer should
// close.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	page := v.pageHeight()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.scroll(-1)
	case tcell.KeyDown, tcell.KeyEnter:
		v.scroll(1)
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		v.scroll(-page)
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		v.scroll(page)
	case tcell.KeyHome:
		v.offset = 0
	case tcell.KeyEnd:
		v.offset = v.maxOffset()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'k':
			v.scroll(-1)
		case 'j':
			v.scroll(1)
		case ' ':
			v.scroll(page)
		case 'b':
			v.scroll(-page)
		case 'g':
			v.offset = 0
		case 'G':
			v.offset = v.maxOffset()
		}
	}
	return false
}

// Draw renders the visible lines and the status line.
func (v *Viewer) Draw() {
	width, height := v.screen.Size()
	v.rewrap(width)
	v.screen.Clear()
	base := v.theme.base()

	body := v.pageHeight()
	for row := 0; row < body; row++ {
		idx := v.offset + row
		if idx >= len(v.wrapped) {
			break
		}
		v.drawLine(row, width, v.wrapped[idx], base)
	}
	if height > 0 {
		v.drawStatus(height-1, width)
	}
	v.screen.Show()
}

func (v *Viewer) drawLine(y, width int, line []Segment, base tcell.Style) {
	if isRuleLine(line) {
		style := v.theme.styleFor(base, TextStyleRule)
		for x := 0; x < width; x++ {
			v.screen.SetContent(x, y, '─', nil, style)
		}
		return
	}
	x := 0
	for _, seg := range line {
		style := v.theme.styleFor(base, seg.Style)
		for _, ru := range textutil.SanitizeTerminalText(seg.Text) {
			w := textutil.RuneWidth(ru)
			if x+w > width {
				return
			}
			v.screen.SetContent(x, y, ru, nil, style)
			x += w
		}
	}
}

func (v *Viewer) drawStatus(y, width int) {
	style := v.theme.status()
	for x := 0; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
	position := fmt.Sprintf(" %d/%d ", v.lastVisible(), len(v.wrapped))
	title := textutil.TruncateToWidth(" "+v.title, width-textutil.DisplayWidth(position))
	x := 0
	for _, ru := range title + position {
		if x >= width {
			break
		}
		v.screen.SetContent(x, y, ru, nil, style)
		x += textutil.RuneWidth(ru)
	}
}

func (v *Viewer) rewrap(width int) {
	if width == v.wrapWidth {
		return
	}
	v.wrapped = Wrap(v.source, width)
	v.wrapWidth = width
	v.clampOffset()
}

func (v *Viewer) scroll(delta int) {
	v.offset += delta
	v.clampOffset()
}

func (v *Viewer) clampOffset() {
	if v.offset > v.maxOffset() {
		v.offset = v.maxOffset()
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func (v *Viewer) pageHeight() int {
	_, height := v.screen.Size()
	if height <= 1 {
		return 1
	}
	return height - 1
}

func (v *Viewer) maxOffset() int {
	lines := len(v.wrapped)
	if v.wrapWidth < 0 {
		lines = len(v.source)
	}
	if limit := lines - v.pageHeight(); limit > 0 {
		return limit
	}
	return 0
}

func (v *Viewer) lastVisible() int {
	last := v.offset + v.pageHeight()
	if last > len(v.wrapped) {
		last = len(v.wrapped)
	}
	return last
}
