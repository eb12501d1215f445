package fsops

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// MemFS is an in-memory Filesystem for tests.
// It records every Remove call and can be told to fail removal of
// specific paths, which is how locked-file scenarios are simulated.
type MemFS struct {
	nodes map[string]*memNode

	// RemoveCalls lists every path passed to Remove, in order,
	// including calls that failed.
	RemoveCalls []string

	// FailRemove maps a path to the error its removal should produce.
	FailRemove map[string]error
}

type memNode struct {
	name    string
	dir     bool
	size    int64
	modTime time.Time
}

func NewMemFS() *MemFS {
	return &MemFS{
		nodes:      map[string]*memNode{"/": {name: "/", dir: true}},
		FailRemove: map[string]error{},
	}
}

// AddDir creates a directory and any missing parents
func (m *MemFS) AddDir(path string) {
	p := filepath.Clean(path)
	for p != "/" {
		if _, ok := m.nodes[p]; !ok {
			m.nodes[p] = &memNode{name: filepath.Base(p), dir: true, modTime: time.Now()}
		}
		p = filepath.Dir(p)
	}
}

// AddFile creates a regular file of the given size, plus missing parents
func (m *MemFS) AddFile(path string, size int64) {
	p := filepath.Clean(path)
	m.AddDir(filepath.Dir(p))
	m.nodes[p] = &memNode{name: filepath.Base(p), size: size, modTime: time.Now()}
}

// Exists reports whether a path is present in the fake tree
func (m *MemFS) Exists(path string) bool {
	_, ok := m.nodes[filepath.Clean(path)]
	return ok
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	n, ok := m.nodes[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return memInfo{n}, nil
}

func (m *MemFS) ReadDir(path string) ([]fs.DirEntry, error) {
	p := filepath.Clean(path)
	n, ok := m.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !n.dir {
		return nil, &fs.PathError{Op: "readdirent", Path: path, Err: syscall.ENOTDIR}
	}

	var entries []fs.DirEntry
	for child, node := range m.nodes {
		if filepath.Dir(child) == p && child != "/" {
			entries = append(entries, memEntry{node})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemFS) Remove(path string) error {
	p := filepath.Clean(path)
	m.RemoveCalls = append(m.RemoveCalls, p)

	if err, ok := m.FailRemove[p]; ok {
		return &fs.PathError{Op: "remove", Path: path, Err: err}
	}
	n, ok := m.nodes[p]
	if !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	if n.dir && m.hasChildren(p) {
		return &fs.PathError{Op: "remove", Path: path, Err: syscall.ENOTEMPTY}
	}
	delete(m.nodes, p)
	return nil
}

func (m *MemFS) hasChildren(dir string) bool {
	prefix := dir + string(filepath.Separator)
	if dir == "/" {
		prefix = "/"
	}
	for child := range m.nodes {
		if child != dir && strings.HasPrefix(child, prefix) {
			return true
		}
	}
	return false
}

type memInfo struct{ n *memNode }

func (i memInfo) Name() string       { return i.n.name }
func (i memInfo) Size() int64        { return i.n.size }
func (i memInfo) ModTime() time.Time { return i.n.modTime }
func (i memInfo) IsDir() bool        { return i.n.dir }
func (i memInfo) Sys() any           { return nil }

func (i memInfo) Mode() fs.FileMode {
	if i.n.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

type memEntry struct{ n *memNode }

func (e memEntry) Name() string               { return e.n.name }
func (e memEntry) IsDir() bool                { return e.n.dir }
func (e memEntry) Type() fs.FileMode          { return memInfo{e.n}.Mode().Type() }
func (e memEntry) Info() (fs.FileInfo, error) { return memInfo{e.n}, nil }
