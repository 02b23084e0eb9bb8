package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func kvStores(t *testing.T) map[string]KeyValueStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatal(err)
	}
	db, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"file":   fs,
		"sqlite": db.KV(),
	}
}

func TestKeyValueStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range kvStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "recent-searches"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
			}

			if err := store.Set(ctx, "recent-searches", []byte(`[{"query":"a"}]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := store.Get(ctx, "recent-searches")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `[{"query":"a"}]` {
				t.Errorf("Get = %s", got)
			}

			if err := store.Set(ctx, "recent-searches", []byte(`[]`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = store.Get(ctx, "recent-searches")
			if string(got) != `[]` {
				t.Errorf("after overwrite Get = %s", got)
			}

			if err := store.Delete(ctx, "recent-searches"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, "recent-searches"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: err = %v", err)
			}
			if err := store.Delete(ctx, "recent-searches"); err != nil {
				t.Errorf("Delete missing: %v", err)
			}
		})
	}
}

func TestMemoryStore_copiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	v := []byte("abc")
	_ = m.Set(ctx, "k", v)
	v[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller slice: %s", got)
	}
	got[1] = 'y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored slice: %s", again)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "store")
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if fs.Dir() != dir {
		t.Errorf("Dir() = %q", fs.Dir())
	}
	if err := fs.Set(ctx, "slot", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "slot.json")); err != nil {
		t.Errorf("expected slot.json: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the slot file, got %d entries", len(entries))
	}

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := fs.Set(ctx, key, []byte("v")); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
	}

	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") should fail")
	}
}
