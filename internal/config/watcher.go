package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change before
// reloading, so editors that write in several steps trigger one reload.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches the config file for changes and validates new configs.
// Callbacks run on the watcher's goroutine.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// Path to watch
	path     string
	debounce time.Duration

	// Current valid config
	current *Config

	// Callbacks
	onReload func(cfg *Config)
	onError  func(err error)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a Watcher for the config file at path.
// If path is empty, uses the default config path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if path == "" {
		path = Path()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		path:     path,
		debounce: DefaultDebounce,
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// SetDebounce sets the quiet period before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *Watcher) SetReloadCallback(callback func(cfg *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the callback to invoke when a changed config fails to load.
func (w *Watcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start begins watching the config file for changes.
func (w *Watcher) Start(ctx context.Context, initial *Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	// Watch the directory containing the file; atomic saves replace the file.
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.current = initial
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.watchLoop(ctx, fsw, w.stopCh, w.doneCh)

	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// Stop stops watching the config file.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	// Wait for goroutine to finish
	<-done
	w.logger.Debug("config watcher stopped")
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Current returns the current valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// watchLoop is the main watch loop. When it exits on its own (context
// cancelled, watcher closed) the Watcher is marked stopped so Start works again.
func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer fsw.Close()
	defer func() {
		w.mu.Lock()
		if w.running && w.doneCh == done {
			w.running = false
			w.logger.Debug("config watcher stopped", "reason", "loop exited")
		}
		w.mu.Unlock()
	}()

	filename := filepath.Base(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			w.mu.RLock()
			debounce := w.debounce
			w.mu.RUnlock()
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

// reload loads and validates the config file and notifies callbacks.
func (w *Watcher) reload() {
	w.mu.RLock()
	reloadCallback := w.onReload
	errorCallback := w.onError
	w.mu.RUnlock()

	w.logger.Debug("config file changed", "path", w.path)

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	// Config is valid - update current and notify
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	if reloadCallback != nil {
		reloadCallback(cfg)
	}
}
