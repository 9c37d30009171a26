// Package batch converts many source files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kk-code-lab/rmark/internal/document"
	"github.com/kk-code-lab/rmark/internal/fs"
	"github.com/kk-code-lab/rmark/internal/logging"
	"github.com/kk-code-lab/rmark/internal/markup"
)

// ErrDuplicateOutput marks a job whose output path is already written by an
// earlier job, as with "x.md" and "x.markdown" in one directory.
var ErrDuplicateOutput = errors.New("output path already used by another input")

// Job is one input file and the path its HTML is written to.
type Job struct {
	Input  string
	Output string
}

// Result reports the outcome of one job. Err is nil on success.
type Result struct {
	Job
	Bytes    int
	Duration time.Duration
	Err      error
}

// Options configures a batch run.
type Options struct {
	Converter   *markup.Converter
	Standalone  bool
	Page        document.PageOptions
	Concurrency int
	SourceLimit int64
	Logger      *zap.Logger
}

// OutputPath maps a source path relative to its root onto outDir, replacing
// the extension with ".html".
func OutputPath(rel, outDir string) string {
	base := strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	return filepath.Join(outDir, filepath.FromSlash(base))
}

// Plan builds one job per source, writing next to the source when outDir is
// empty. Sources that map onto the same output are rejected later by Run.
func Plan(sources []fs.Source, outDir string) []Job {
	jobs := make([]Job, 0, len(sources))
	for _, src := range sources {
		out := OutputPath(filepath.Base(src.Path), filepath.Dir(src.Path))
		if outDir != "" {
			out = OutputPath(src.Rel, outDir)
		}
		jobs = append(jobs, Job{Input: src.Path, Output: out})
	}
	return jobs
}

// Run converts every job with at most opts.Concurrency files in flight.
// Per-file failures are reported in the results and do not stop the run;
// cancelling ctx does, and Run then returns ctx's error along with the
// results gathered so far. Results keep the order of jobs.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	logger := logging.OrNop(opts.Logger)
	conv := opts.Converter
	if conv == nil {
		conv = markup.New(markup.DefaultOptions())
	}

	results := make([]Result, len(jobs))
	claimed := make(map[string]string, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
		key := filepath.Clean(job.Output)
		if first, ok := claimed[key]; ok {
			results[i].Err = fmt.Errorf("%s: %w: %s", job.Output, ErrDuplicateOutput, first)
			logger.Warn("skipping input", zap.String("input", job.Input), zap.Error(results[i].Err))
			continue
		}
		claimed[key] = job.Input
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			start := time.Now()
			n, err := ConvertFile(conv, jobs[i].Input, jobs[i].Output, FileOptions{
				Standalone:  opts.Standalone,
				Page:        opts.Page,
				SourceLimit: opts.SourceLimit,
			})
			results[i].Bytes = n
			results[i].Duration = time.Since(start)
			results[i].Err = err
			if err != nil {
				logger.Warn("conversion failed", zap.String("input", jobs[i].Input), zap.Error(err))
				return nil
			}
			logger.Debug("converted",
				zap.String("input", jobs[i].Input),
				zap.String("output", jobs[i].Output),
				zap.Int("bytes", n),
				zap.Duration("took", results[i].Duration))
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		for i := range results {
			if results[i].Err == nil && results[i].Duration == 0 {
				results[i].Err = err
			}
		}
		return results, err
	}
	return results, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// FileOptions configures ConvertFile.
type FileOptions struct {
	Standalone  bool
	Page        document.PageOptions
	SourceLimit int64
}

// ConvertFile reads input, converts it and writes the HTML to output,
// creating parent directories. It returns the number of bytes written.
func ConvertFile(c *markup.Converter, input, output string, opts FileOptions) (int, error) {
	src, err := fs.ReadSource(input, opts.SourceLimit)
	if err != nil {
		return 0, err
	}
	out, err := Render(c, src, stem(input), opts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("cannot write %s: %w", output, err)
	}
	return len(out), nil
}

// Render turns decoded source text into output HTML. Standalone output is a
// full page titled from front matter, the first heading or fallbackTitle.
func Render(c *markup.Converter, src, fallbackTitle string, opts FileOptions) (string, error) {
	doc, err := document.Parse([]byte(src))
	if err != nil {
		return "", err
	}
	if !opts.Standalone {
		out := doc.Render(c)
		if out != "" {
			out += "\n"
		}
		return out, nil
	}
	page := opts.Page
	if page.FallbackTitle == "" {
		page.FallbackTitle = fallbackTitle
	}
	return doc.RenderPage(c, page), nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
