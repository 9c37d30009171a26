//go:build windows

package fs

import (
	"strings"

	"golang.org/x/sys/windows"
)

// IsHidden reports whether a source is a dot file or carries the Windows
// hidden attribute.
func IsHidden(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	attrs, err := sourceAttributes(path)
	return err == nil && attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
