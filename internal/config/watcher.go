package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the daemon config file and reloads it when it changes.
// A config that fails to load or validate is reported and the current one is kept.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	watcher    *fsnotify.Watcher
	configPath string

	currentConfig *DaemonConfig

	onReloadCallback func(newConfig *DaemonConfig)
	onErrorCallback  func(err error)

	done    chan struct{}
	running bool
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		p, err := DaemonConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger:     logger,
		watcher:    fsw,
		configPath: path,
		done:       make(chan struct{}),
	}, nil
}

// SetReloadCallback sets the callback to invoke when config is successfully reloaded.
func (w *Watcher) SetReloadCallback(callback func(newConfig *DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback to invoke when config reload fails validation.
func (w *Watcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// Start begins watching the config file for changes.
// The directory is watched rather than the file so that editors that
// replace the file on save are still seen.
func (w *Watcher) Start(ctx context.Context, initialConfig *DaemonConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.currentConfig = initialConfig
	w.mu.Unlock()

	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.watch(ctx)

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching the config file.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	w.logger.Debug("config watcher stopped")
	return w.watcher.Close()
}

// Current returns the current valid configuration.
func (w *Watcher) Current() *DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

// watch is the main watch loop.
func (w *Watcher) watch(ctx context.Context) {
	filename := filepath.Base(w.configPath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

// reload loads and validates the config file and notifies the callbacks.
func (w *Watcher) reload() {
	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	newConfig, err := LoadDaemonConfig(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "path", w.configPath, "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	w.currentConfig = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully", "path", w.configPath)
	if reloadCallback != nil {
		reloadCallback(newConfig)
	}
}
