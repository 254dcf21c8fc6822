// Package watch regenerates reports when artifacts change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/artifacts"
)

// DefaultDebounce lets a test run finish writing its files before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange once a burst of artifact changes has settled.
type Watcher struct {
	dirs     func() []string
	debounce time.Duration
	onChange func(ctx context.Context) error
	logger   *zap.Logger
}

// New returns a Watcher over the directories listed by dirs. The list is
// re-read whenever a directory appears and after every regeneration, so
// directories created after startup are picked up.
func New(dirs func() []string, debounce time.Duration, onChange func(ctx context.Context) error, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dirs: dirs, debounce: debounce, onChange: onChange, logger: logger}
}

// Run blocks until ctx is done. Directories that do not exist yet are
// skipped until a later rescan finds them.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	w.rescan(watcher, watched)

	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

	var pending bool
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// fsnotify drops the watch with the directory.
				delete(watched, event.Name)
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.rescan(watcher, watched)
				}
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("Artifact changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			pending = true
			last = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-ticker.C:
			if !pending || time.Since(last) < w.debounce {
				continue
			}
			pending = false
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("Regeneration failed", zap.Error(err))
			}
			w.rescan(watcher, watched)
		}
	}
}

// rescan adds every listed directory not yet in watched.
func (w *Watcher) rescan(watcher *fsnotify.Watcher, watched map[string]bool) {
	for _, dir := range w.dirs() {
		if watched[dir] {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			w.logger.Debug("Not watching missing directory", zap.String("dir", dir))
			continue
		}
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("Failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched[dir] = true
		w.logger.Info("Watching for artifacts", zap.String("dir", dir))
	}
}

// Dirs lists the directories artifacts land in. fsnotify is not recursive,
// so criterion's nested benchmark directories are listed individually.
func Dirs(reportsDir, benchmarksDir string) []string {
	dirs := []string{
		reportsDir,
		filepath.Join(reportsDir, "coverage"),
		filepath.Join(reportsDir, "memory"),
		filepath.Join(reportsDir, "platform"),
		benchmarksDir,
	}
	for _, pattern := range []string{"*", "*/*", "*/*/*"} {
		matches, _ := filepath.Glob(filepath.Join(benchmarksDir, pattern))
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() && filepath.Base(m) != "report" {
				dirs = append(dirs, m)
			}
		}
	}
	return dirs
}

// relevant filters out our own outputs so a rebuild does not trigger
// another one.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	switch {
	case strings.HasPrefix(name, artifacts.ReportPrefix),
		strings.HasPrefix(name, ".tmp-"),
		strings.HasPrefix(name, "history.db"):
		return false
	}
	return true
}
