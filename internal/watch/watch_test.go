package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/goleak"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "doc.md")
	w := &Watcher{target: target}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"sibling", fsnotify.Event{Name: filepath.Join(dir, "other.md"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Fatalf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNewRejectsNilCallback(t *testing.T) {
	if _, err := New("x.md", 0, nil, nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
}

func TestWatcherDebouncesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# v0"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var calls atomic.Int32
	changed := make(chan struct{}, 8)
	w, err := New(path, 100*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		changed <- struct{}{}
		return errors.New("logged, not fatal")
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("# v"+string(rune('1'+i))), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification")
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n >= 5 {
		t.Fatalf("expected writes to be coalesced, got %d callbacks", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRunReturnsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "doc.md")
	w, err := New(path, 0, func(context.Context) error { return nil }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.debounce != DefaultDebounce {
		t.Fatalf("debounce = %v, want default", w.debounce)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after Close")
	}
}
