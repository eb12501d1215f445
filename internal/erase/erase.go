// Package erase implements single-entry deletion with strict and
// tolerant failure modes, an existence-checked safe delete, and a
// recursive directory eraser that empties a tree before removing it.
package erase

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"tree-reaper/internal/fsops"
)

// Eraser performs deletions through an injectable filesystem.
// The zero value is not usable; construct with New.
type Eraser struct {
	fs fsops.Filesystem

	// OnResult, when set, observes the outcome of every deletion
	// attempt made by EraseTree. Failures inside the hook cannot
	// abort the erase; the hook is for logging, metrics, and history.
	OnResult func(Result)
}

// New creates an Eraser over the given filesystem.
// Passing nil selects the real OS filesystem.
func New(fsys fsops.Filesystem) *Eraser {
	if fsys == nil {
		fsys = fsops.OSFilesystem{}
	}
	return &Eraser{fs: fsys}
}

// Delete removes exactly one entry: a file, or a directory that is
// already empty. This is strict mode: any failure is returned as a
// *DeletionError carrying the path and the classified cause.
func (e *Eraser) Delete(path string) error {
	if strings.TrimSpace(path) == "" {
		return &DeletionError{Path: path, Cause: ErrInvalidPath}
	}
	if err := e.fs.Remove(path); err != nil {
		return &DeletionError{Path: path, Cause: err}
	}
	return nil
}

// TryDelete is tolerant mode: the same operation as Delete, but any
// failure is swallowed and reported as false.
func (e *Eraser) TryDelete(path string) bool {
	return e.Delete(path) == nil
}

// SafeDelete checks existence before deleting so the common missing-
// target case never surfaces as an error. A present target is deleted
// in strict mode with the error captured in the result instead of
// propagated. The window between the stat and the delete is a known
// race; a concurrent removal shows up as a failed result.
func (e *Eraser) SafeDelete(path string) Result {
	info, err := e.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Path: path, Outcome: OutcomeMissing}
		}
		return Result{Path: path, Outcome: OutcomeFailed, Err: &DeletionError{Path: path, Cause: err}}
	}

	res := Result{Path: path, Size: info.Size(), IsDir: info.IsDir()}
	if err := e.Delete(path); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeDeleted
	return res
}

// EraseTree removes a directory and everything beneath it. The tree is
// enumerated eagerly, every regular file is safe-deleted with
// individual failures tolerated, directory nodes are then removed
// deepest-first, and finally the root itself.
//
// The returned result is only the outcome of the final root removal.
// A failed nested deletion leaves the root non-empty, so the root
// result ends up failed too, but the result alone does not say which
// of "root never existed", "a nested entry would not delete", or
// "root removal failed outright" happened. Callers needing per-entry
// outcomes set OnResult.
//
// A root that denotes a regular file degenerates to a single safe
// delete.
func (e *Eraser) EraseTree(root string) Result {
	info, err := e.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Path: root, Outcome: OutcomeMissing}
		}
		return Result{Path: root, Outcome: OutcomeFailed, Err: &DeletionError{Path: root, Cause: err}}
	}
	if !info.IsDir() {
		res := e.SafeDelete(root)
		e.emit(res)
		return res
	}

	entries, err := e.Enumerate(root)
	if err != nil {
		// Enumeration failure leaves nothing to empty; fall through
		// to the root removal, which reports the real state.
		entries = nil
	}

	var dirs []Entry
	for _, ent := range entries {
		if ent.Depth == 0 {
			continue
		}
		switch ent.Kind {
		case KindFile:
			e.emit(e.SafeDelete(ent.Path))
		case KindDir:
			dirs = append(dirs, ent)
		}
	}

	// Children before parents, so each directory is empty by the time
	// its own removal is attempted
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Depth > dirs[j].Depth })
	for _, dir := range dirs {
		e.emit(e.SafeDelete(dir.Path))
	}

	res := e.SafeDelete(root)
	e.emit(res)
	return res
}

func (e *Eraser) emit(res Result) {
	if e.OnResult != nil {
		e.OnResult(res)
	}
}
