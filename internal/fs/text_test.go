package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsTextFileDetectsUTF16LE(t *testing.T) {
	content := []byte{0xFF, 0xFE, 0x41, 0x00, 0x0D, 0x00, 0x0A, 0x00}
	if !IsTextFile("notes.md", content) {
		t.Fatalf("expected UTF-16 LE content to be treated as text")
	}
}

func TestIsTextFileRejectsBinary(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content []byte
	}{
		{"extension", "photo.PNG", []byte("# looks like text")},
		{"nul byte", "notes.md", []byte("abc\x00def")},
		{"control bytes", "", []byte{0x01, 0x02, 0x03, 0x04, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsTextFile(tt.path, tt.content) {
				t.Fatalf("expected %q to be treated as binary", tt.content)
			}
		})
	}
}

func TestNormalizeTextContentUTF16LE(t *testing.T) {
	content := []byte{0xFF, 0xFE, 0x41, 0x00, 0x0D, 0x00, 0x0A, 0x00}
	got := NormalizeTextContent(content)
	want := "A\r\n"
	if got != want {
		t.Fatalf("NormalizeTextContent returned %q, want %q", got, want)
	}
}

func TestNormalizeTextContentStripsUTF8BOM(t *testing.T) {
	got := NormalizeTextContent([]byte("\xEF\xBB\xBF# Title"))
	if got != "# Title" {
		t.Fatalf("NormalizeTextContent returned %q", got)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, content []byte) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	t.Run("utf8", func(t *testing.T) {
		got, err := ReadSource(write("a.md", []byte("# A\n")), 0)
		if err != nil {
			t.Fatalf("ReadSource: %v", err)
		}
		if got != "# A\n" {
			t.Fatalf("ReadSource = %q", got)
		}
	})

	t.Run("utf16 big endian", func(t *testing.T) {
		got, err := ReadSource(write("b.md", []byte{0xFE, 0xFF, 0x00, 0x23, 0x00, 0x20, 0x00, 0x42}), 0)
		if err != nil {
			t.Fatalf("ReadSource: %v", err)
		}
		if got != "# B" {
			t.Fatalf("ReadSource = %q", got)
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := ReadSource(write("c.md", []byte(strings.Repeat("x", 32))), 16)
		if !errors.Is(err, ErrTooLarge) {
			t.Fatalf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("exactly at limit", func(t *testing.T) {
		if _, err := ReadSource(write("d.md", []byte(strings.Repeat("x", 16))), 16); err != nil {
			t.Fatalf("ReadSource: %v", err)
		}
	})

	t.Run("binary", func(t *testing.T) {
		_, err := ReadSource(write("e.md", []byte("a\x00b")), 0)
		if !errors.Is(err, ErrBinaryContent) {
			t.Fatalf("expected ErrBinaryContent, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadSource(filepath.Join(dir, "missing.md"), 0)
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected not-exist error, got %v", err)
		}
	})
}

func TestDecodeSource(t *testing.T) {
	if _, err := DecodeSource([]byte{0x00, 0x01}); !errors.Is(err, ErrBinaryContent) {
		t.Fatalf("expected ErrBinaryContent, got %v", err)
	}
	got, err := DecodeSource([]byte("plain"))
	if err != nil || got != "plain" {
		t.Fatalf("DecodeSource = %q, %v", got, err)
	}
}
