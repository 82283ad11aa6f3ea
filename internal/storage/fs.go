package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FSClient stores blobs as files in a local directory. This is the
// default backend; each document lives at <dir>/<documentID>.enc.
type FSClient struct {
	dir string
}

// NewFSClient constructs a filesystem backend rooted at dir.
func NewFSClient(dir string) (*FSClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("blob directory is required")
	}
	return &FSClient{dir: dir}, nil
}

// EnsureBucket creates the blob directory if it does not exist.
func (f *FSClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(f.dir, 0o755)
}

// Put writes a blob, replacing any existing content for the key.
func (f *FSClient) Put(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(filepath.Join(f.dir, key), data, 0o644)
}

// Get reads a blob. A missing file is reported as ErrObjectNotFound.
func (f *FSClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing blob is a no-op.
func (f *FSClient) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(f.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
