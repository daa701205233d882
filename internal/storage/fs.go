package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS implements Provider backed by the local file system. Attachments
// live under root/<ownerID>/<name>, one flat directory per owner.
type FS struct {
	root string // absolute path to the attachments directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath validates ownerID and name as plain path segments (no
// separators, no traversal) and returns the absolute attachment path.
func (f *FS) safePath(ownerID, name string) (string, error) {
	for _, seg := range []string{ownerID, name} {
		if seg == "" {
			return "", fmt.Errorf("storage: empty path segment")
		}
		cleaned := filepath.Clean(seg)
		if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
			return "", fmt.Errorf("storage: invalid path segment: %s", seg)
		}
	}
	abs := filepath.Join(f.root, ownerID, name)
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes attachments root: %s", name)
	}
	return abs, nil
}

// List returns every attachment stored for the owner.
func (f *FS) List(ownerID string) ([]Blob, error) {
	dir := filepath.Join(f.root, ownerID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []Blob
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		out = append(out, Blob{Name: e.Name(), Size: info.Size()})
	}
	return out, nil
}

// Path returns the absolute path of an existing attachment.
func (f *FS) Path(ownerID, name string) (string, error) {
	abs, err := f.safePath(ownerID, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return abs, nil
}

// Write atomically stores content via a temp file, fsync, then rename.
func (f *FS) Write(ownerID, name string, content []byte) error {
	abs, err := f.safePath(ownerID, name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".laguz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the owner's attachment.
func (f *FS) Delete(ownerID, name string) error {
	abs, err := f.safePath(ownerID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}
