// Package safety decides whether a path may be handed to the eraser.
// Every sweep target passes through Check before any deletion starts.
package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("empty path")
	ErrProtected     = errors.New("protected system path")
	ErrOutsideRoots  = errors.New("outside allowed roots")
	ErrTraversal     = errors.New("path traversal detected")
	ErrSymlinkEscape = errors.New("symlink escapes allowed roots")
)

// systemPaths are always refused, whatever the configuration says
var systemPaths = []string{
	"/",
	"/etc",
	"/bin",
	"/usr",
	"/boot",
	"/lib",
	"/lib64",
	"/sbin",
	"/var/lib/tree-reaper",
	"/etc/tree-reaper",
}

// Policy is the delete-authorization contract: a target must sit under
// an allowed root, must not touch a protected path, and must not reach
// outside the roots through ".." segments or symlinks.
type Policy struct {
	roots     []string
	protected []string
}

// NewPolicy builds a policy from allowed roots and optional extra
// protected paths on top of the built-in system set.
func NewPolicy(allowedRoots, extraProtected []string) *Policy {
	p := &Policy{protected: append(append([]string{}, systemPaths...), extraProtected...)}
	for _, r := range allowedRoots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		if abs, err := filepath.Abs(r); err == nil {
			p.roots = append(p.roots, filepath.Clean(abs))
		}
	}
	return p
}

// Check returns nil when path may be deleted, or a typed error naming
// the violated rule.
func (p *Policy) Check(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if hasDotDot(path) {
		return ErrTraversal
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrEmptyPath
	}
	abs = filepath.Clean(abs)

	if p.isProtected(abs) {
		return ErrProtected
	}
	if !p.inRoots(abs) {
		return ErrOutsideRoots
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// A not-yet-existing target cannot escape anything; the
		// delete itself will report the missing path
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if resolved != abs && !p.inRoots(filepath.Clean(resolved)) {
		return ErrSymlinkEscape
	}
	return nil
}

func (p *Policy) isProtected(abs string) bool {
	if abs == string(os.PathSeparator) {
		return true
	}
	for _, prot := range p.protected {
		if underneath(abs, filepath.Clean(prot)) {
			return true
		}
	}
	return false
}

func (p *Policy) inRoots(abs string) bool {
	for _, root := range p.roots {
		if underneath(abs, root) {
			return true
		}
	}
	return false
}

// underneath reports whether path equals prefix or lives below it
func underneath(path, prefix string) bool {
	if prefix == string(os.PathSeparator) {
		return path == prefix
	}
	return path == prefix || strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

func hasDotDot(raw string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(raw), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
