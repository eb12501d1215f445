package erase

import "path/filepath"

// EntryKind classifies a filesystem entry seen during traversal
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindOther
)

// Entry is one enumerated filesystem entry. Entries are transient:
// produced by Enumerate, consumed by EraseTree, never cached.
type Entry struct {
	Path  string
	Kind  EntryKind
	Size  int64
	Depth int
}

// Enumerate materializes every entry reachable from root, root itself
// included, before any deletion begins. Deleting while iterating a live
// directory stream can race with the iterator and leave entries
// unvisited, so the whole tree is collected up front.
//
// Sibling order follows the underlying enumerator and is not part of
// the contract. Subdirectories that cannot be read are recorded as
// directories but not descended into; their contents will surface as a
// non-empty failure at removal time.
func (e *Eraser) Enumerate(root string) ([]Entry, error) {
	info, err := e.fs.Stat(root)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	e.collect(filepath.Clean(root), kindOf(info.IsDir(), info.Mode().IsRegular()), info.Size(), 0, &entries)
	return entries, nil
}

func (e *Eraser) collect(path string, kind EntryKind, size int64, depth int, out *[]Entry) {
	*out = append(*out, Entry{Path: path, Kind: kind, Size: size, Depth: depth})

	if kind != KindDir {
		return
	}
	children, err := e.fs.ReadDir(path)
	if err != nil {
		return
	}
	for _, child := range children {
		childPath := filepath.Join(path, child.Name())
		var childSize int64
		regular := child.Type().IsRegular()
		if info, err := child.Info(); err == nil {
			childSize = info.Size()
		}
		e.collect(childPath, kindOf(child.IsDir(), regular), childSize, depth+1, out)
	}
}

func kindOf(dir, regular bool) EntryKind {
	switch {
	case dir:
		return KindDir
	case regular:
		return KindFile
	default:
		return KindOther
	}
}
