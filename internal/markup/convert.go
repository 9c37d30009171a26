// Package markup converts a lightweight Markdown dialect into HTML.
//
// Conversion runs in three stages: Segment splits the source into typed
// blocks, Substitute rewrites inline spans inside each non-verbatim block and
// Emit joins the per-block markup, wrapping runs of adjacent list items in a
// single list container. Every stage is a pure function of its input; a
// Converter holds only immutable options and is safe for concurrent use.
package markup

// Options tunes conversion. The zero value is a strict rendering with hard
// breaks and link sanitizing switched off.
type Options struct {
	// HardBreaks renders a paragraph or quote line ending in two spaces or a
	// backslash as <br> instead of joining it with a space.
	HardBreaks bool
	// SafeLinks drops link and image destinations with unsafe schemes.
	SafeLinks bool
	// NormalizeUnicode applies NFC normalization to the source.
	NormalizeUnicode bool
	// TabWidth expands tabs inside code fences; zero keeps them.
	TabWidth int
}

// DefaultOptions returns the options used by the package-level functions.
func DefaultOptions() Options {
	return Options{
		HardBreaks: true,
		SafeLinks:  true,
	}
}

// Converter turns source text into HTML with a fixed set of options.
type Converter struct {
	opts Options
}

// New returns a Converter using opts.
func New(opts Options) *Converter {
	if opts.TabWidth < 0 {
		opts.TabWidth = 0
	}
	return &Converter{opts: opts}
}

// Options returns the converter's options.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert renders src as HTML. It accepts any string and never fails.
func (c *Converter) Convert(src string) string {
	return c.Emit(c.Segment(src))
}

// Segment splits src into finalized blocks.
func (c *Converter) Segment(src string) []Block {
	return c.segment(src)
}

// Substitute rewrites the inline spans of one block's text. The text must be
// original source text, never previously emitted markup.
func (c *Converter) Substitute(text string) string {
	return c.substitute(text)
}

// BlockText returns the inline source of a non-verbatim block: its lines
// joined as Emit joins them, with hard breaks kept as '\n'.
func (c *Converter) BlockText(block Block) string {
	return c.text(block)
}

var defaultConverter = New(DefaultOptions())

// Convert renders src as HTML using DefaultOptions.
func Convert(src string) string {
	return defaultConverter.Convert(src)
}

// Segment splits src into blocks using DefaultOptions.
func Segment(src string) []Block {
	return defaultConverter.Segment(src)
}

// Substitute rewrites inline spans in text using DefaultOptions.
func Substitute(text string) string {
	return defaultConverter.Substitute(text)
}

// Emit renders blocks using DefaultOptions.
func Emit(blocks []Block) string {
	return defaultConverter.Emit(blocks)
}
