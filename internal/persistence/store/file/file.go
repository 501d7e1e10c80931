// Package file is the on-device document backend: one file per key under an
// app-private directory namespaced by client id.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"playgate/pkg/platform/sentinel"
)

// DirName is the base name of the cache directory.
const DirName = "tap_anti_addiction"

const documentMode fs.FileMode = 0o600

// Backend stores documents as files below Root.
type Backend struct {
	root string
}

// New prepares the cache directory below baseDir for clientID. When the
// client-scoped directory does not exist yet but the unscoped directory of
// an older install does, the latter is moved into place.
func New(baseDir, clientID string) (*Backend, error) {
	legacy := filepath.Join(baseDir, DirName)
	root := legacy
	if clientID != "" {
		root = filepath.Join(baseDir, DirName+"_"+clientID)
	}
	if root != legacy {
		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			if info, err := os.Stat(legacy); err == nil && info.IsDir() {
				if err := os.Rename(legacy, root); err != nil {
					return nil, fmt.Errorf("migrate cache dir: %w", err)
				}
			}
		}
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Backend{root: root}, nil
}

// Root returns the directory documents are stored in.
func (b *Backend) Root() string {
	return b.root
}

func (b *Backend) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sentinel.ErrNotFound
	}
	return data, err
}

// Write replaces the document at key. The data is staged in a temp file in
// the same directory and renamed over the old document, so readers see either
// the old or the new content. Failures wrap sentinel.ErrUnavailable.
func (b *Backend) Write(_ context.Context, key string, data []byte) error {
	path := b.path(key)
	tmpPath, err := stage(filepath.Dir(path), data)
	if err != nil {
		return fmt.Errorf("write %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if err := replace(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

// stage writes data to a synced, owner-only temp file in dir and returns its
// path. The temp file is removed on failure.
func stage(dir string, data []byte) (path string, err error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, ".pending-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return "", err
	}
	if err = tmp.Chmod(documentMode); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}

// replace renames src over dst. A destination that cannot be renamed over
// (locked on some platforms) is removed and the rename tried once more.
func replace(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		return errors.Join(err, rmErr)
	}
	return os.Rename(src, dst)
}

func (b *Backend) Remove(_ context.Context, key string) error {
	err := os.Remove(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
