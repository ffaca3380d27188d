// Package storage provides the object store used for uploaded files.
// The current backend writes to local disk and serves objects through the
// /uploads static route.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type FileStore struct {
	baseDir string
	baseURL string
}

// NewFileStore creates a disk-backed store rooted at baseDir. Objects are
// addressable under baseURL using their object ID as the path.
func NewFileStore(baseDir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FileStore) Put(ctx context.Context, objectID, contentType string, data io.Reader) (string, error) {
	path, err := s.objectPath(objectID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write object: %w", err)
	}

	return s.baseURL + "/" + objectID, nil
}

func (s *FileStore) Delete(ctx context.Context, objectID string) error {
	path, err := s.objectPath(objectID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// objectPath rejects IDs that would escape the base directory.
func (s *FileStore) objectPath(objectID string) (string, error) {
	clean := filepath.Clean("/" + objectID)
	if strings.Contains(objectID, "..") {
		return "", fmt.Errorf("invalid object id: %s", objectID)
	}
	return filepath.Join(s.baseDir, clean), nil
}
