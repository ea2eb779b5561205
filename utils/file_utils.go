package utils

import "os"

// FileSize returns the size of a file in bytes, or 0 when it cannot be
// stat'd.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
