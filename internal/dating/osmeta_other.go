//go:build !darwin

package dating

import "time"

// fromOSMetadata has no source outside macOS.
func fromOSMetadata(string) (time.Time, bool) {
	return time.Time{}, false
}
