package disk

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// FreePercent returns the percentage of free disk space for a path
func FreePercent(path string) (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}

	totalBytes := int64(stat.Blocks) * int64(stat.Bsize)
	freeBytes := int64(stat.Bavail) * int64(stat.Bsize)
	if totalBytes == 0 {
		return 0, nil
	}
	return float64(freeBytes) / float64(totalBytes) * 100.0, nil
}

// Responsive probes a path with a bounded stat. A hung stat or an
// NFS-style I/O error means the mount is stale and a sweep would wedge
// on it.
func Responsive(path string, timeout time.Duration) bool {
	done := make(chan error, 1)
	go func() {
		_, err := os.Stat(path)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || os.IsNotExist(err) {
			return true
		}
		if errors.Is(err, syscall.EIO) || errors.Is(err, syscall.ESTALE) || errors.Is(err, syscall.ENXIO) {
			return false
		}
		return !os.IsTimeout(err)
	case <-time.After(timeout):
		return false
	}
}
