package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_NewFileStore_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "credentials")

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if store.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", store.Dir(), dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("Path is not a directory")
	}
}

func TestFileStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.Save(ctx, KeyAccessToken, []byte("tok-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := store.Load(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "tok-1" {
		t.Errorf("Load() = %q, want %q", data, "tok-1")
	}

	// Overwrite
	if err := store.Save(ctx, KeyAccessToken, []byte("tok-2")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, _ = store.Load(ctx, KeyAccessToken)
	if string(data) != "tok-2" {
		t.Errorf("Load() after overwrite = %q, want %q", data, "tok-2")
	}

	exists, err := store.Exists(ctx, KeyAccessToken)
	if err != nil || !exists {
		t.Errorf("Exists() = (%v, %v), want (true, nil)", exists, err)
	}

	if err := store.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, KeyAccessToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Save(context.Background(), KeyRefreshToken, []byte("secret")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, KeyRefreshToken))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	// No temp files should be left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in store dir, got %d", len(entries))
	}
}

func TestFileStore_InvalidKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := store.Save(ctx, key, []byte("x")); err == nil {
			t.Errorf("Save(%q) should fail", key)
		}
		if _, err := store.Load(ctx, key); err == nil {
			t.Errorf("Load(%q) should fail", key)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte("value")
	if err := store.Save(ctx, KeyRole, buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	buf[0] = 'X'

	data, err := store.Load(ctx, KeyRole)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("Load() = %q, stored value must not alias caller buffer", data)
	}

	if err := store.Delete(ctx, KeyRole); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, KeyRole); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete error = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestLoadString(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := LoadString(ctx, store, KeyUser)
	if err != nil || got != "" {
		t.Errorf("LoadString(missing) = (%q, %v), want (\"\", nil)", got, err)
	}

	_ = store.Save(ctx, KeyUser, []byte(`{"id":"u1"}`))
	got, err = LoadString(ctx, store, KeyUser)
	if err != nil || got != `{"id":"u1"}` {
		t.Errorf("LoadString() = (%q, %v)", got, err)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Save(ctx, KeyAccessToken, []byte("a"))
	_ = store.Save(ctx, KeyRole, []byte("admin"))

	// KeyRefreshToken and KeyUser are absent; Clear must still succeed.
	if err := Clear(ctx, store, CredentialKeys...); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", store.Len())
	}
}
