package preview

import "github.com/gdamore/tcell/v2"

// Theme holds the viewer colors.
type Theme struct {
	Foreground  tcell.Color
	Background  tcell.Color
	CodeFg      tcell.Color
	CodeBg      tcell.Color
	CodeBlockFg tcell.Color
	CodeBlockBg tcell.Color
	QuoteFg     tcell.Color
	StatusFg    tcell.Color
	StatusBg    tcell.Color
}

// DefaultTheme returns the default color scheme.
func DefaultTheme() Theme {
	return Theme{
		Foreground:  tcell.ColorDefault,
		Background:  tcell.ColorDefault,
		CodeFg:      tcell.Color44,  // bright cyan for inline code
		CodeBg:      tcell.ColorDefault,
		CodeBlockFg: tcell.Color252, // light grey text for fenced code
		CodeBlockBg: tcell.Color234, // dark grey background for fenced code
		QuoteFg:     tcell.ColorLightSlateGray,
		StatusFg:    tcell.ColorWhite,
		StatusBg:    tcell.Color33,
	}
}

func (t Theme) base() tcell.Style {
	return tcell.StyleDefault.Foreground(t.Foreground).Background(t.Background)
}

func (t Theme) status() tcell.Style {
	return tcell.StyleDefault.Foreground(t.StatusFg).Background(t.StatusBg)
}

func (t Theme) styleFor(base tcell.Style, kind TextStyleKind) tcell.Style {
	switch kind {
	case TextStyleStrong, TextStyleHeading:
		return base.Bold(true)
	case TextStyleEmphasis:
		return base.Italic(true)
	case TextStyleStrike:
		return base.StrikeThrough(true)
	case TextStyleCode:
		style := base
		if t.CodeFg != tcell.ColorDefault {
			style = style.Foreground(t.CodeFg)
		}
		if t.CodeBg != tcell.ColorDefault {
			style = style.Background(t.CodeBg)
		}
		return style.Dim(false)
	case TextStyleCodeBlock:
		style := base
		if t.CodeBlockFg != tcell.ColorDefault {
			style = style.Foreground(t.CodeBlockFg)
		}
		if t.CodeBlockBg != tcell.ColorDefault {
			style = style.Background(t.CodeBlockBg)
		}
		return style.Dim(false)
	case TextStyleLink:
		return base.Underline(true)
	case TextStyleQuote:
		if t.QuoteFg != tcell.ColorDefault {
			return base.Foreground(t.QuoteFg)
		}
		return base
	case TextStyleRule:
		return base.Dim(true)
	default:
		return base
	}
}
