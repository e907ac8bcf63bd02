package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"initcheck/internal/schema"
)

// DefaultDebounce is how long Watch waits for more changes before calling
// back.
const DefaultDebounce = 150 * time.Millisecond

// Watch observes the documents named by paths and calls fn with the sorted
// list of changed documents once changes settle for debounce. Directories
// are watched recursively; a file is watched through its parent directory
// so editors that replace files on save are still seen. Watch returns nil
// when ctx is canceled, or the first error from fn or the watcher.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func(changed []string) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	scope := newWatchScope()
	for _, p := range paths {
		if err := scope.add(w, p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && scope.underDir(ev.Name) {
					_ = scope.addDir(w, ev.Name)
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !scope.relevant(ev.Name) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			if err := fn(changed); err != nil {
				return err
			}
		}
	}
}

// watchScope decides which events concern the watched documents.
type watchScope struct {
	files map[string]bool
	dirs  []string
}

func newWatchScope() *watchScope {
	return &watchScope{files: make(map[string]bool)}
}

func (s *watchScope) add(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		s.files[filepath.Clean(path)] = true
		return w.Add(filepath.Dir(path))
	}
	s.dirs = append(s.dirs, filepath.Clean(path))
	return s.addDir(w, path)
}

func (s *watchScope) addDir(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func (s *watchScope) underDir(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range s.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *watchScope) relevant(path string) bool {
	path = filepath.Clean(path)
	if s.files[path] {
		return true
	}
	_, ok := schema.FormatForPath(path)
	return ok && s.underDir(path)
}
