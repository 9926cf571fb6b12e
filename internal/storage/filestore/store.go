// Package filestore persists collections as YAML files, one file per
// collection handle.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/folio-cms/folio/internal/collections"
	"gopkg.in/yaml.v3"
)

const extension = ".yaml"

// Store is a collections.Store writing <dir>/<handle>.yaml files
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(handle string) (string, error) {
	if handle == "" || strings.ContainsAny(handle, `/\`) || handle == "." || handle == ".." {
		return "", fmt.Errorf("invalid collection handle: %q", handle)
	}
	return filepath.Join(s.dir, handle+extension), nil
}

// Put writes the collection file. The write goes through a temporary file so
// readers never see a partial document.
func (s *Store) Put(ctx context.Context, snapshot collections.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(snapshot.Handle)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", snapshot.Handle, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create content directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+snapshot.Handle+"-*")
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", snapshot.Handle, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write collection %s: %w", snapshot.Handle, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", snapshot.Handle, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", snapshot.Handle, err)
	}
	return nil
}

// Get reads a collection file
func (s *Store) Get(ctx context.Context, handle string) (collections.Snapshot, error) {
	var snapshot collections.Snapshot
	if err := ctx.Err(); err != nil {
		return snapshot, err
	}

	path, err := s.path(handle)
	if err != nil {
		return snapshot, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snapshot, fmt.Errorf("collection %s: %w", handle, collections.ErrNotFound)
		}
		return snapshot, fmt.Errorf("failed to read collection %s: %w", handle, err)
	}

	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// the file name is the identity
	snapshot.Handle = handle
	return snapshot, nil
}

// Delete removes a collection file
func (s *Store) Delete(ctx context.Context, handle string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(handle)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("collection %s: %w", handle, collections.ErrNotFound)
		}
		return fmt.Errorf("failed to delete collection %s: %w", handle, err)
	}
	return nil
}

// Handles lists the collection files, sorted. A missing directory holds no
// collections.
func (s *Store) Handles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var handles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != extension {
			continue
		}
		handles = append(handles, strings.TrimSuffix(name, extension))
	}
	sort.Strings(handles)
	return handles, nil
}
