//go:build !linux && !darwin

package walker

import (
	"os"
	"time"
)

// fileTimes has no portable source for creation or access times outside
// linux and darwin; both fall back to the modification time.
func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	return info.ModTime(), info.ModTime()
}

func fileOwner(info os.FileInfo) string {
	return ""
}
