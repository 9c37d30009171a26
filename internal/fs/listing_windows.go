//go:build windows

package fs

import "golang.org/x/sys/windows"

// ShouldHideFromListing reports whether a walk must skip the entry even when
// hidden sources are requested. Compatibility junctions such as
// "Application Data" are system reparse points that loop back into the tree.
func ShouldHideFromListing(path, _ string) bool {
	attrs, err := sourceAttributes(path)
	if err != nil {
		return false
	}
	const junction = windows.FILE_ATTRIBUTE_SYSTEM | windows.FILE_ATTRIBUTE_REPARSE_POINT
	return attrs&junction == junction
}
