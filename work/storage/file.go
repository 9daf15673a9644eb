package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole key space as a single JSON object on disk,
// rewritten synchronously on every mutation. It is the flat-file analog of
// a browser's local storage: small, human-readable, single-writer.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileStore opens (or creates) the store at path. An unreadable or
// corrupt file is treated as empty rather than failing the caller; the
// broken content is overwritten on the next Set.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	fs := &FileStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		// missing file is the normal first-run case
		return fs, nil
	}

	if err := json.Unmarshal(raw, &fs.data); err != nil {
		fs.data = make(map[string]string)
	}

	return fs, nil
}

func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	value, ok := fs.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data[key] = value
	return fs.flushLocked()
}

func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	delete(fs.data, key)
	return fs.flushLocked()
}

func (fs *FileStore) Close() error {
	return nil
}

// flushLocked rewrites the backing file. Callers must hold fs.mu.
func (fs *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(fs.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	return nil
}
