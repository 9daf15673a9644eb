package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := fs.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := fs.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "value" {
		t.Errorf("Expected value, got %q", got)
	}
}

func TestFileStoreMissingKey(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, err := fs.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := first.Set("persisted", "yes"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Reopening store failed: %v", err)
	}
	got, err := second.Get("persisted")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "yes" {
		t.Errorf("Expected yes, got %q", got)
	}
}

func TestFileStoreDelete(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	fs.Set("key", "value")
	if err := fs.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := fs.Get("key"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	if err := os.WriteFile(path, []byte("{{{ not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Expected corrupt file to be tolerated, got %v", err)
	}

	if _, err := fs.Get("anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected empty store, got %v", err)
	}
}
