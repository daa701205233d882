package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func testFS(t *testing.T) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return f
}

func TestWriteAndPath(t *testing.T) {
	f := testFS(t)
	if err := f.Write("alice", "photo.png", []byte("pngdata")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	abs, err := f.Path("alice", "photo.png")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil || string(data) != "pngdata" {
		t.Errorf("read back = %q, %v", data, err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	f := testFS(t)
	_ = f.Write("alice", "a.png", []byte("x"))
	_ = f.Write("alice", "b.png", []byte("xy"))
	_ = f.Write("bob", "c.png", []byte("z"))

	blobs, err := f.List("alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(blobs) != 2 {
		t.Errorf("blobs = %v, want 2", blobs)
	}
	for _, b := range blobs {
		if b.Name == "c.png" {
			t.Errorf("bob's attachment leaked into alice's list")
		}
	}
}

func TestListMissingOwnerEmpty(t *testing.T) {
	f := testFS(t)
	blobs, err := f.List("nobody")
	if err != nil || blobs != nil {
		t.Errorf("List = %v, %v, want nil, nil", blobs, err)
	}
}

func TestDelete(t *testing.T) {
	f := testFS(t)
	_ = f.Write("alice", "a.png", []byte("x"))
	if err := f.Delete("alice", "a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.Path("alice", "a.png"); err == nil {
		t.Error("deleted attachment still resolvable")
	}
}

func TestTraversalRejected(t *testing.T) {
	f := testFS(t)
	bad := []struct{ owner, name string }{
		{"alice", "../escape.png"},
		{"..", "a.png"},
		{"alice", "sub/dir.png"},
		{"alice", ""},
		{"", "a.png"},
	}
	for _, tt := range bad {
		if err := f.Write(tt.owner, tt.name, []byte("x")); err == nil {
			t.Errorf("Write(%q, %q) accepted", tt.owner, tt.name)
		}
	}
	// Nothing escaped the root.
	if _, err := os.Stat(filepath.Join(filepath.Dir(f.root), "escape.png")); err == nil {
		t.Error("traversal wrote outside root")
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	f := testFS(t)
	_ = f.Write("alice", "a.png", []byte("x"))
	entries, _ := os.ReadDir(filepath.Join(f.root, "alice"))
	for _, e := range entries {
		if e.Name() != "a.png" {
			t.Errorf("unexpected leftover file %s", e.Name())
		}
	}
}
