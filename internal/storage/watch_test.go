package storage

import (
	"context"
	"slices"
	"testing"
	"time"
)

func TestFileStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(keys []string) { changes <- keys })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// A second writer sharing the directory, as another CLI process would.
	other, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	_ = other.Save(context.Background(), KeyAccessToken, []byte("a"))
	_ = other.Save(context.Background(), KeyRole, []byte("admin"))

	deadline := time.After(2 * time.Second)
	seen := map[string]bool{}
	for !seen[KeyAccessToken] || !seen[KeyRole] {
		select {
		case keys := <-changes:
			if slices.ContainsFunc(keys, func(k string) bool { return k[0] == '.' }) {
				t.Errorf("temp files must not be reported: %v", keys)
			}
			for _, k := range keys {
				seen[k] = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change notifications, saw %v", seen)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v after cancel, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
