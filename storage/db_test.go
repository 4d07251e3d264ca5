package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Database {
	t.Helper()
	dir := t.TempDir()
	ldb, err := NewLevelDB(filepath.Join(dir, "leveldb"))
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	bdb, err := NewBoltDB(filepath.Join(dir, "state.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	return map[string]Database{
		"memory":  NewMemDB(),
		"leveldb": ldb,
		"bolt":    bdb,
	}
}

func TestBackendsPutGet(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("expected ErrKeyNotFound, got %v", err)
			}
			if err := db.Put([]byte("k"), []byte("v1")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := db.Put([]byte("k"), []byte("v2")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			value, err := db.Get([]byte("k"))
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(value) != "v2" {
				t.Fatalf("got %q, want v2", value)
			}
			if err := db.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
		})
	}
}
