// Package watch re-runs a conversion whenever a source file is saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rmark/internal/logging"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 150 * time.Millisecond

// ChangeFunc is called after the watched file settles.
type ChangeFunc func(ctx context.Context) error

// Watcher watches a single file. It watches the parent directory so editors
// that save by renaming a temporary file over the original are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	onChange ChangeFunc
	logger   *zap.Logger
}

// New starts watching path. onChange runs once per burst of writes.
func New(path string, debounce time.Duration, onChange ChangeFunc, logger *zap.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watch: nil change callback")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("cannot watch %s: %w", filepath.Dir(target), err)
	}

	return &Watcher{
		watcher:  fw,
		target:   filepath.Clean(target),
		debounce: debounce,
		onChange: onChange,
		logger:   logging.OrNop(logger),
	}, nil
}

// Run delivers change notifications until ctx is done or the watcher is
// closed. Callback errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Debug("watching", zap.String("path", w.target))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("rebuild failed", zap.String("path", w.target), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
