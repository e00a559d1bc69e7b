package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemStore persists blobs under a root directory on local disk, the
// way the public upload disk of the original deployment worked.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a store rooted at the given directory.
func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{root: root}
}

// resolve joins the reference with the root and rejects paths that would
// escape it.
func (s *FilesystemStore) resolve(path string) (string, error) {
	clean := filepath.Clean(strings.TrimPrefix(path, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

// Save writes the content under root/path, creating parent directories as
// needed, and returns the relative path as the stored reference.
func (s *FilesystemStore) Save(ctx context.Context, path string, content io.Reader) (string, error) {
	target, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(target)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Clean(strings.TrimPrefix(path, "/"))), nil
}

// Delete removes a stored blob. A missing file is treated as already deleted.
func (s *FilesystemStore) Delete(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
