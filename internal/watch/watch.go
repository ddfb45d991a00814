// Package watch re-runs a callback when a report file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Watcher.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a function after changes to a file, or to matching files in a
// directory, have settled for Debounce.
type Watcher struct {
	// Path is a report file or a directory of reports.
	Path string
	// Match selects the file names that trigger inside a watched directory.
	// Nil matches every file.
	Match    func(name string) bool
	Debounce time.Duration
	Logger   *slog.Logger
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Run blocks until ctx ends, calling fn once per burst of changes. Errors from
// fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	info, err := os.Stat(w.Path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", w.Path, err)
	}

	// Watch the parent of a file: editors and benchmark binaries often
	// replace files, which drops a watch placed on the file itself.
	dir, file := w.Path, ""
	if !info.IsDir() {
		dir, file = filepath.Dir(w.Path), filepath.Base(w.Path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	log := w.logger()
	log.Info("Watching for changes", "path", w.Path, "debounce", debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.triggers(event, file) {
				continue
			}
			log.Debug("Change detected", "file", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "error", err)

		case <-timer.C:
			if err := fn(ctx); err != nil {
				log.Error("Refresh failed", "error", err)
			}
		}
	}
}

func (w *Watcher) triggers(event fsnotify.Event, file string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if file != "" {
		return name == file
	}
	return w.Match == nil || w.Match(name)
}
