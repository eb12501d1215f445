package fsops

import "io/fs"

// Filesystem abstracts the three calls the erase pipeline makes:
// existence/classification queries, directory enumeration, and the
// single-entry delete primitive. Injecting a fake keeps unit tests
// off the real filesystem and lets dry-run proofs count syscalls.
type Filesystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Remove(path string) error
}
