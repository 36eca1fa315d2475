//go:build windows

package thumbnail

import (
	"fmt"
	"os"
)

// fileSignature builds the video cache key input from size and mtime. Windows
// has no cheap stable inode equivalent through os.Stat, so a renamed file
// keeps its key only while size and mtime are unchanged.
func fileSignature(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d_%d", info.Size(), info.ModTime().UnixMilli()), nil
}
