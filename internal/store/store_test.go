package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	doc := map[string]any{"id": "exp1", "name": "Jane Doe"}
	if err := s.Put("exp1", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("exp1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got["name"] != "Jane Doe" {
		t.Errorf("name = %v, want Jane Doe", got["name"])
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("exp1", map[string]any{"id": "exp1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.Delete("exp1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("exp1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete("exp1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestListSortedAndCached(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := s.Put(id, map[string]any{"id": id}); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}

	docs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len = %d, want 3", len(docs))
	}
	for i, want := range []string{"alpha", "bravo", "charlie"} {
		if docs[i]["id"] != want {
			t.Errorf("docs[%d].id = %v, want %s", i, docs[i]["id"], want)
		}
	}

	// Second List comes from the cache; removing a file behind the
	// store's back must not change the result.
	os.Remove(filepath.Join(s.Dir(), "alpha.json"))
	cached, err := s.List()
	if err != nil {
		t.Fatalf("List (cached): %v", err)
	}
	if len(cached) != 3 {
		t.Errorf("cached len = %d, want 3", len(cached))
	}
}

func TestWriteInvalidatesListingCache(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("a", map[string]any{"id": "a"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.List(); err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := s.Put("b", map[string]any{"id": "b"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	docs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("len = %d, want 2 after invalidation", len(docs))
	}
}

func TestListSkipsCorruptFiles(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("good", map[string]any{"id": "good"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	docs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0]["id"] != "good" {
		t.Errorf("docs = %v, want only the readable record", docs)
	}
}

func TestInvalidIDRejected(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		if err := s.Put(id, map[string]any{}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Put(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestPutOverwritesWholeDocument(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("x", map[string]any{"id": "x", "old": "field"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("x", map[string]any{"id": "x", "new": "field"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got["old"]; ok {
		t.Error("old field survived overwrite; Put must replace the whole document")
	}
	if got["new"] != "field" {
		t.Errorf("new = %v", got["new"])
	}
}
