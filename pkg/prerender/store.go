package prerender

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Store is the interface for prerender output backends.
// Implement this interface to write pages to S3, GCS, or other storage.
type Store interface {
	// Put stores body under path, a slash-separated key such as
	// "blog/index.html".
	Put(ctx context.Context, path, contentType string, body []byte) error
}

// ErrInvalidPath is returned for keys that are absolute or escape the
// store root.
var ErrInvalidPath = errors.New("prerender: invalid output path")

// FileStore writes pages below a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Put writes body to dir/path. The file is written under a temporary name
// and renamed so readers never see a partial page.
func (s *FileStore) Put(ctx context.Context, path, _ string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanKey(path)
	if err != nil {
		return err
	}
	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, body, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// cleanKey normalizes a slash-separated key and rejects keys that would
// leave the store root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(key)), "./"), nil
}
