package fsops

import (
	"io/fs"
	"os"
)

// OSFilesystem implements Filesystem using real os package calls
type OSFilesystem struct{}

func (OSFilesystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSFilesystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (OSFilesystem) Remove(path string) error {
	return os.Remove(path)
}
