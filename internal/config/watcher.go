package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	logpkg "github.com/rzbill/xstream/pkg/log"
)

// Watcher holds the config loaded from a file and reloads it when the file
// changes. Environment overrides and the overlays given to NewWatcher are
// re-applied on every reload, in that order.
type Watcher struct {
	path     string
	logger   logpkg.Logger
	overlays []func(*Config)

	mu       sync.RWMutex
	current  Config
	onChange []func(Config)
}

// NewWatcher performs the initial load of path. Overlays run after the
// environment on every load; command-line flags are passed this way so a
// reload does not undo them.
func NewWatcher(path string, logger logpkg.Logger, overlays ...func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	w := &Watcher{path: filepath.Clean(path), logger: logger, overlays: overlays}
	cfg, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current = cfg
	return w, nil
}

// Config returns the latest successfully loaded configuration.
func (w *Watcher) Config() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(fn func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Watch starts a goroutine that reloads the file on change. The parent
// directory is watched so that editors replacing the file by rename are
// picked up. Call stop to release the watcher.
func (w *Watcher) Watch() (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", dir, err)
	}

	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := w.Reload(); err != nil {
						w.logger.Warn("config reload failed; keeping previous config",
							logpkg.Str("path", w.path), logpkg.Err(err))
					}
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("config watcher error", logpkg.Err(err))
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
func (w *Watcher) Reload() (Config, error) {
	cfg, err := w.load()
	if err != nil {
		return Config{}, err
	}
	w.mu.Lock()
	w.current = cfg
	callbacks := make([]func(Config), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("config reloaded", logpkg.Str("path", w.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (w *Watcher) load() (Config, error) {
	cfg, err := Load(w.path)
	if err != nil {
		return Config{}, err
	}
	FromEnv(&cfg)
	for _, fn := range w.overlays {
		fn(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
