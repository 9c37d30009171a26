//go:build windows

package fs

import "golang.org/x/sys/windows"

// sourceAttributes reads the Windows attribute bits of a path met while
// walking a source tree.
func sourceAttributes(path string) (uint32, error) {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	return windows.GetFileAttributes(ptr)
}
