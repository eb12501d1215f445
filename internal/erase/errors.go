package erase

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("target does not exist")
	ErrNotEmpty    = errors.New("directory not empty")
	ErrPermission  = errors.New("permission denied")
)

// DeletionError is the strict-mode failure: the path that could not be
// deleted plus the underlying cause. errors.Is matches it against the
// taxonomy sentinels above, so callers branch on the kind of failure
// without parsing messages.
type DeletionError struct {
	Path  string
	Cause error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Cause)
}

func (e *DeletionError) Unwrap() error { return e.Cause }

func (e *DeletionError) Is(target error) bool {
	switch target {
	case ErrNotFound, ErrNotEmpty, ErrPermission, ErrInvalidPath:
		return Classify(e.Cause) == target
	}
	return false
}

// Classify maps a raw filesystem error onto the error taxonomy.
// Errors outside the taxonomy pass through unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidPath):
		return ErrInvalidPath
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST):
		// EEXIST is what some platforms report for rmdir on a
		// non-empty directory
		return ErrNotEmpty
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return err
	}
}
