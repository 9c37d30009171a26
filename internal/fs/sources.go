package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultSourceExtensions are the file extensions ListSources picks up when
// none are given.
var DefaultSourceExtensions = []string{".md", ".markdown", ".mdown", ".mkd"}

// Source is one markup file found under a root directory.
type Source struct {
	// Path is the file path as it can be opened.
	Path string
	// Rel is Path relative to the listing root, NFC-normalized and with
	// forward slashes.
	Rel      string
	Size     int64
	Modified time.Time
}

// ListOptions controls ListSources.
type ListOptions struct {
	Extensions    []string
	IncludeHidden bool
}

// ListSources walks root and returns the markup files beneath it, sorted by
// Rel. Hidden files and directories are skipped unless requested. If root is
// a regular file it is returned on its own regardless of extension.
func ListSources(root string, opts ListOptions) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []Source{{
			Path:     root,
			Rel:      norm.NFC.String(filepath.ToSlash(filepath.Base(root))),
			Size:     info.Size(),
			Modified: info.ModTime(),
		}}, nil
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultSourceExtensions
	}

	var sources []Source
	err = filepath.WalkDir(root, func(path string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		name := d.Name()
		if ShouldHideFromListing(path, name) || (!opts.IncludeHidden && IsHidden(path, name)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasExtension(name, exts) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}
		sources = append(sources, Source{
			Path:     path,
			Rel:      norm.NFC.String(filepath.ToSlash(rel)),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", root, err)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Rel < sources[j].Rel
	})
	return sources, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}
