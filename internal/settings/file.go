package settings

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type fileBackend struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// NewFile returns a backend persisting to a YAML document at path. The
// file is created on first write with mode 0600.
func NewFile(path string) (Backend, error) {
	f := &fileBackend{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f.values); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	return f, nil
}

func (f *fileBackend) Load(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

// Apply writes the whole document to a temp file and renames it into place.
func (f *fileBackend) Apply(ctx context.Context, b Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.values)
	for k, v := range b.Set {
		next[k] = v
	}
	for _, k := range b.Delete {
		delete(next, k)
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("settings: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("settings: chmod: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("settings: rename: %w", err)
	}

	f.values = next
	return nil
}

func (f *fileBackend) Close() error { return nil }
