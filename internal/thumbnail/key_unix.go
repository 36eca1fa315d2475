//go:build !windows

package thumbnail

import (
	"fmt"
	"os"
	"syscall"
)

// fileSignature builds the video cache key input from the inode identity and
// mtime, so renames and moves within a filesystem keep their thumbnails while
// content changes invalidate them.
func fileSignature(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%d_%d_%d", st.Ino, st.Dev, info.ModTime().UnixMilli()), nil
	}
	return fmt.Sprintf("%d_%d", info.Size(), info.ModTime().UnixMilli()), nil
}
