package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kk-code-lab/rmark/internal/document"
	"github.com/kk-code-lab/rmark/internal/fs"
	"github.com/kk-code-lab/rmark/internal/preview"
)

var errNoTerminal = errors.New("preview needs an interactive terminal")

func newPreviewCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the rendered document in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNoTerminal
			}
			return c.runPreview(args[0])
		},
	}
}

func (c *cli) runPreview(path string) error {
	src, err := fs.ReadSource(path, 0)
	if err != nil {
		return err
	}
	doc, err := document.Parse([]byte(src))
	if err != nil {
		return err
	}
	conv := c.converter()
	lines := preview.Lines(conv, conv.Segment(doc.Body))

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	title := doc.Title(conv)
	if title == "" {
		title = filepath.Base(path)
	}
	return preview.NewViewer(screen, title, lines).Run()
}
