// Package watch reports changed source files under a directory tree.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch of changes is handed
// to the callback.
const DefaultDebounce = 200 * time.Millisecond

// DefaultPattern matches Markdown sources.
const DefaultPattern = "**/*.{md,markdown}"

// Watcher watches Root recursively. Hidden directories are skipped.
type Watcher struct {
	Root     string
	Pattern  string // doublestar pattern on slash paths relative to Root
	Debounce time.Duration
	Logger   *zap.Logger
}

// Handler receives the absolute paths changed since the last call, sorted.
// An error is logged and watching continues.
type Handler func(ctx context.Context, paths []string) error

// Run watches until ctx is done and returns nil in that case. Only setup
// failures and a closed watcher are returned as errors.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pattern := w.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return errors.New("invalid watch pattern " + pattern)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	root, err := filepath.Abs(w.Root)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addTree(fw, root, logger); err != nil {
		return err
	}
	logger.Debug("watching", zap.String("root", root), zap.String("pattern", pattern))

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(fw, ev.Name, logger); err != nil {
						logger.Warn("cannot watch directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !matches(root, ev.Name, pattern) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				// Renamed-away and deleted files have nothing to render.
				if _, err := os.Stat(p); err == nil {
					paths = append(paths, p)
				}
			}
			clear(pending)
			if len(paths) == 0 {
				continue
			}
			slices.Sort(paths)
			if err := handle(ctx, paths); err != nil {
				logger.Warn("change handler failed", zap.Strings("paths", paths), zap.Error(err))
			}
		}
	}
}

func matches(root, path, pattern string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
	return ok
}

// addTree watches dir and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, dir string, logger *zap.Logger) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
