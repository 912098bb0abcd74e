package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events produced by an atomic write
// (create temp, chmod, rename) into a single notification.
const watchDebounce = 50 * time.Millisecond

// Watch reports changes made to the store's files by any process. fn is called
// with the sorted set of keys that changed once events settle. Watch blocks until
// ctx is cancelled and returns nil in that case.
func (fs *FileStore) Watch(ctx context.Context, fn func(keys []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(fs.baseDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", fs.baseDir, err)
	}

	debounceTimer := time.NewTimer(watchDebounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			debounceTimer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key := filepath.Base(event.Name)
			if strings.HasPrefix(key, ".") {
				continue
			}

			pending[key] = struct{}{}

			debounceTimer.Reset(watchDebounce)

		case <-debounceTimer.C:
			keys := make([]string, 0, len(pending))
			for k := range pending {
				keys = append(keys, k)
			}
			clear(pending)

			if len(keys) > 0 {
				slices.Sort(keys)
				fn(keys)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", fs.baseDir, err)
		}
	}
}
