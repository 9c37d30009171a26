package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmark/internal/batch"
	"github.com/kk-code-lab/rmark/internal/watch"
)

func newWatchCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Rebuild HTML whenever the source file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = batch.OutputPath(input, "")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.runWatch(ctx, input, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "HTML file to keep up to date (default: next to the source)")
	return cmd
}

func (c *cli) runWatch(ctx context.Context, input, output string) error {
	conv := c.converter()
	opts := c.fileOptions()
	rebuild := func(context.Context) error {
		n, err := batch.ConvertFile(conv, input, output, opts)
		if err != nil {
			return err
		}
		c.logger.Info("rebuilt", zap.String("output", output), zap.Int("bytes", n))
		return nil
	}

	if err := rebuild(ctx); err != nil {
		return err
	}

	w, err := watch.New(input, c.cfg.Debounce(), rebuild, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	c.logger.Info("watching for changes, press Ctrl+C to stop", zap.String("input", input))
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
