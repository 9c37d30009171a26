package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmark/internal/batch"
	"github.com/kk-code-lab/rmark/internal/fs"
)

func newBatchCmd(c *cli) *cobra.Command {
	var (
		outDir        string
		concurrency   int
		includeHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file|dir>...",
		Short: "Convert many files in parallel",
		Long: `Convert every Markdown file found under the given files and directories.

Output mirrors the input tree under --out-dir, or is written next to each
source when no directory is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out-dir") {
				c.cfg.Batch.OutputDir = outDir
			}
			if cmd.Flags().Changed("jobs") {
				c.cfg.Batch.Concurrency = concurrency
			}
			if cmd.Flags().Changed("hidden") {
				c.cfg.Batch.IncludeHidden = includeHidden
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.runBatch(ctx, args)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", "", "directory for generated HTML")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "parallel conversions (default: CPU count)")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "include hidden files and directories")
	return cmd
}

func (c *cli) runBatch(ctx context.Context, roots []string) error {
	var jobs []batch.Job
	for _, root := range roots {
		sources, err := fs.ListSources(root, fs.ListOptions{
			Extensions:    c.cfg.Batch.Extensions,
			IncludeHidden: c.cfg.Batch.IncludeHidden,
		})
		if err != nil {
			return err
		}
		jobs = append(jobs, batch.Plan(sources, c.cfg.Batch.OutputDir)...)
	}
	if len(jobs) == 0 {
		c.logger.Warn("no source files found", zap.Strings("roots", roots))
		return nil
	}

	fileOpts := c.fileOptions()
	results, err := batch.Run(ctx, jobs, batch.Options{
		Converter:   c.converter(),
		Standalone:  fileOpts.Standalone,
		Page:        fileOpts.Page,
		Concurrency: c.cfg.Concurrency(),
		Logger:      c.logger,
	})
	failed := batch.Failed(results)
	for _, r := range failed {
		fmt.Fprintf(c.stderr, "%s: %v\n", r.Input, r.Err)
	}
	if err != nil {
		return err
	}
	c.logger.Info("batch finished",
		zap.Int("converted", len(results)-len(failed)),
		zap.Int("failed", len(failed)))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}
