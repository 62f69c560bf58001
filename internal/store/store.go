// Package store persists records as individual JSON documents on disk,
// one file per record id, under a namespace directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidID is returned for record ids that cannot be used as filenames.
var ErrInvalidID = errors.New("invalid record id")

// Store is a keyed document store over a directory of JSON files. Writes
// are atomic (temp file + rename) and invalidate the listing cache, so a
// partial write is never observable.
type Store struct {
	dir string

	mu       sync.Mutex
	listing  []map[string]any
	hasCache bool
}

// Open creates the namespace directory if absent and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the namespace directory backing this store.
func (s *Store) Dir() string { return s.dir }

// List reads every JSON document in the namespace, sorted by id. Results
// are served from a cache until the next write. Individual unreadable
// files are skipped with a warning so one corrupt record cannot hide the
// rest.
func (s *Store) List() ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCache {
		return s.listing, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			// Leftover temp files from interrupted writes.
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]map[string]any, 0, len(names))
	for _, name := range names {
		doc, err := readDoc(filepath.Join(s.dir, name))
		if err != nil {
			slog.Warn("skipping unreadable record", "file", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	s.listing = docs
	s.hasCache = true
	return docs, nil
}

// Get returns the document stored under id, or ErrNotFound.
func (s *Store) Get(id string) (map[string]any, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	doc, err := readDoc(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Exists reports whether a document is stored under id.
func (s *Store) Exists(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Put writes doc under id, overwriting any previous document. The write
// goes to a temp file first and is renamed into place, so readers never
// see a partial document.
func (s *Store) Put(id string, doc any) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing record %s: %w", id, err)
	}

	s.invalidate()
	return nil
}

// Delete removes the document stored under id. ErrNotFound when absent.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	s.invalidate()
	return nil
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.listing = nil
	s.hasCache = false
	s.mu.Unlock()
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}
