package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmark/internal/batch"
	"github.com/kk-code-lab/rmark/internal/config"
	"github.com/kk-code-lab/rmark/internal/document"
	"github.com/kk-code-lab/rmark/internal/fs"
	"github.com/kk-code-lab/rmark/internal/logging"
	"github.com/kk-code-lab/rmark/internal/markup"
)

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath   string
	verbose      bool
	output       string
	standalone   bool
	stylesheet   string
	noHardBreaks bool
	unsafeLinks  bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "rmark [file|-]",
		Short: "Convert lightweight Markdown to HTML",
		Long: `rmark converts a Markdown dialect (headings, lists, quotes, fenced code,
emphasis, links and images) into HTML.

With no file, or with "-", the source is read from standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.convert(input)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: user config dir)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&c.standalone, "standalone", false, "emit a complete HTML page")
	pf.StringVar(&c.stylesheet, "css", "", "stylesheet to link from standalone pages")
	pf.BoolVar(&c.noHardBreaks, "no-hard-breaks", false, "join lines ending in two spaces or a backslash with a space")
	pf.BoolVar(&c.unsafeLinks, "unsafe-links", false, "keep link destinations with unknown schemes")
	root.Flags().StringVarP(&c.output, "output", "o", "", "write HTML to file instead of stdout")

	root.AddCommand(newBatchCmd(c))
	root.AddCommand(newWatchCmd(c))
	root.AddCommand(newPreviewCmd(c))
	root.AddCommand(newConfigCmd(c))
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("no-hard-breaks") {
		cfg.Markup.HardBreaks = !c.noHardBreaks
	}
	if flags.Changed("unsafe-links") {
		cfg.Markup.SafeLinks = !c.unsafeLinks
	}
	if flags.Changed("standalone") {
		cfg.Page.Standalone = c.standalone
	}
	if flags.Changed("css") {
		cfg.Page.Stylesheet = c.stylesheet
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Logging.Level, c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger
	c.logger.Debug("configuration loaded", zap.String("path", path))
	return nil
}

func (c *cli) converter() *markup.Converter {
	return markup.New(c.cfg.MarkupOptions())
}

func (c *cli) fileOptions() batch.FileOptions {
	return batch.FileOptions{
		Standalone: c.cfg.Page.Standalone,
		Page: document.PageOptions{
			Stylesheet: c.cfg.Page.Stylesheet,
			Lang:       c.cfg.Page.Lang,
		},
	}
}

func (c *cli) convert(input string) error {
	var (
		src   string
		title string
		err   error
	)
	if input == "-" {
		data, readErr := io.ReadAll(c.stdin)
		if readErr != nil {
			return fmt.Errorf("cannot read stdin: %w", readErr)
		}
		src, err = fs.DecodeSource(data)
		title = "stdin"
	} else {
		src, err = fs.ReadSource(input, 0)
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	if err != nil {
		return err
	}

	out, err := batch.Render(c.converter(), src, title, c.fileOptions())
	if err != nil {
		return err
	}

	if c.output == "" || c.output == "-" {
		_, err = io.WriteString(c.stdout, out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.output), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(c.output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", c.output, err)
	}
	c.logger.Info("wrote output", zap.String("path", c.output), zap.Int("bytes", len(out)))
	return nil
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
