package lint

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/solatis/namekeeper/internal/classify"
)

// DefaultDebounce is how long Watch waits for more changes before calling back.
const DefaultDebounce = 200 * time.Millisecond

// WatchRoots returns the directories to watch for the given lint patterns:
// the static prefix of a glob, a directory itself, or a file's directory.
func WatchRoots(patterns []string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, p := range patterns {
		root := p
		if containsGlob(p) {
			root, _ = doublestar.SplitPattern(filepath.ToSlash(p))
			root = filepath.FromSlash(root)
		} else if info, err := os.Stat(p); err == nil && !info.IsDir() {
			root = filepath.Dir(p)
		}
		root = filepath.Clean(root)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	sort.Strings(roots)
	return roots
}

// Watch calls onChange with the sorted set of source files created, written
// or removed under roots, coalescing changes that arrive within debounce.
// It blocks until ctx is cancelled.
func Watch(ctx context.Context, roots []string, debounce time.Duration, logger *slog.Logger, onChange func(paths []string)) error {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, root := range roots {
		if err := addRecursive(w, root, logger); err != nil {
			return err
		}
	}
	logger.InfoContext(ctx, "watching for changes", "roots", roots, "debounce", debounce)

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(w, ev.Name, logger); err != nil {
						logger.WarnContext(ctx, "failed to watch new directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if !classify.IsSourceFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.ErrorContext(ctx, "watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			onChange(paths)
		}
	}
}

// addRecursive watches root and every directory below it that ExpandPaths
// would descend into.
func addRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("watching directory", "path", path)
		return nil
	})
}
