package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the settings blob in a small JSON key-value document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(_ context.Context) (RuntimeSettings, error) {
	entries, err := f.read()
	if err != nil {
		return DefaultRuntimeSettings(), err
	}
	return decodeBlob(entries[StorageKey])
}

func (f *FileStore) Save(_ context.Context, s RuntimeSettings) error {
	blob, err := encodeBlob(s)
	if err != nil {
		return err
	}
	entries, err := f.read()
	if err != nil {
		entries = map[string]string{}
	}
	entries[StorageKey] = blob
	return f.write(entries)
}

func (f *FileStore) Reset(_ context.Context) error {
	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[StorageKey]; !ok {
		return nil
	}
	delete(entries, StorageKey)
	return f.write(entries)
}

func (f *FileStore) read() (map[string]string, error) {
	entries := map[string]string{}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return entries, fmt.Errorf("reading settings: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return map[string]string{}, fmt.Errorf("parsing settings %s: %w", f.path, err)
	}
	return entries, nil
}

func (f *FileStore) write(entries map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	// Readers only ever see a complete document.
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
