package erase

import (
	"testing"

	"tree-reaper/internal/fsops"
)

// TestEnumerateMaterializesTree verifies the traversal is fully
// collected, root included, with depths suitable for bottom-up removal
func TestEnumerateMaterializesTree(t *testing.T) {
	mem := fsops.NewMemFS()
	mem.AddFile("/root/a.txt", 1)
	mem.AddFile("/root/sub/b.txt", 2)
	mem.AddDir("/root/sub/deeper")

	e := New(mem)
	entries, err := e.Enumerate("/root")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}

	byPath := make(map[string]Entry, len(entries))
	for _, ent := range entries {
		byPath[ent.Path] = ent
	}

	tests := []struct {
		path  string
		kind  EntryKind
		depth int
	}{
		{"/root", KindDir, 0},
		{"/root/a.txt", KindFile, 1},
		{"/root/sub", KindDir, 1},
		{"/root/sub/b.txt", KindFile, 2},
		{"/root/sub/deeper", KindDir, 2},
	}

	if len(entries) != len(tests) {
		t.Errorf("Expected %d entries, got %d: %v", len(tests), len(entries), entries)
	}
	for _, tt := range tests {
		ent, ok := byPath[tt.path]
		if !ok {
			t.Errorf("Entry %s not enumerated", tt.path)
			continue
		}
		if ent.Kind != tt.kind {
			t.Errorf("Entry %s kind = %d, expected %d", tt.path, ent.Kind, tt.kind)
		}
		if ent.Depth != tt.depth {
			t.Errorf("Entry %s depth = %d, expected %d", tt.path, ent.Depth, tt.depth)
		}
	}
}

// TestEnumerateMissingRoot verifies a missing root surfaces the stat error
func TestEnumerateMissingRoot(t *testing.T) {
	e := New(fsops.NewMemFS())
	if _, err := e.Enumerate("/absent"); err == nil {
		t.Error("Enumerate on missing root expected error, got nil")
	}
}
