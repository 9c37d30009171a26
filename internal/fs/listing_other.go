//go:build !windows

package fs

// ShouldHideFromListing never hides anything outside Windows.
func ShouldHideFromListing(_, _ string) bool {
	return false
}
