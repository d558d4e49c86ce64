package cliconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/bft-labs/errlog/pkg/log"
)

// LevelWatcher monitors a TOML config file via fsnotify and reports the
// level it declares whenever the file changes.
type LevelWatcher struct {
	path     string
	debounce time.Duration
	onChange func(log.Level)
	logger   zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
	stopped       bool
}

// NewLevelWatcher creates a watcher for the config file at path.
// onChange is called from a timer goroutine after writes settle for debounce.
func NewLevelWatcher(path string, debounce time.Duration, onChange func(log.Level)) *LevelWatcher {
	return &LevelWatcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   Logger(),
	}
}

// Run watches the directory holding the config file. The directory is
// watched instead of the file so that editors replacing the file via
// rename are still observed. Run blocks until ctx is cancelled.
func (w *LevelWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Str("path", w.path).Msg("config watcher error")
		}
	}
}

// schedule (re)starts the debounce timer.
func (w *LevelWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *LevelWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

func (w *LevelWatcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("reload config")
		return
	}
	if fc.Level == "" {
		return
	}
	lvl, err := log.ParseLevel(fc.Level)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("reload config")
		return
	}

	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	w.logger.Info().Str("level", lvl.String()).Msg("log level reloaded")
	w.onChange(lvl)
}
