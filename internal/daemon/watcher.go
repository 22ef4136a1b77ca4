package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/1broseidon/webdesk/internal/config"
)

// ReloadHandler receives a freshly loaded and validated configuration.
type ReloadHandler func(cfg *config.Config)

// WatcherConfig holds configuration for the config watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	Logger   zerolog.Logger
	// Initial is the configuration in effect before the first reload.
	Initial *config.Config
}

// ConfigWatcher reloads the config file when it changes on disk.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	onReload ReloadHandler
	logger   zerolog.Logger

	mu      sync.Mutex
	current *config.Config
}

// NewConfigWatcher creates a watcher for cfg.Path. onReload is called after
// every successful reload; failed reloads are logged and the previous
// configuration stays in effect.
func NewConfigWatcher(cfg WatcherConfig, onReload ReloadHandler) *ConfigWatcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	return &ConfigWatcher{
		path:     cfg.Path,
		debounce: debounce,
		onReload: onReload,
		logger:   cfg.Logger.With().Str("component", "config-watcher").Logger(),
		current:  cfg.Initial,
	}
}

// Run watches the config file's directory until ctx is cancelled. The
// directory is watched rather than the file so editors that replace the
// file on save are still seen.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info().Str("path", w.path).Msg("config watcher started")

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	name := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("config watcher stopped")
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("config change detected")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			w.ReloadNow()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// ReloadNow loads the config file and hands it to the reload handler.
func (w *ConfigWatcher) ReloadNow() (*config.Config, error) {
	res, err := config.LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Msg("config reload failed")
		return nil, err
	}

	w.mu.Lock()
	w.current = res.Config
	w.mu.Unlock()

	w.logger.Info().Bool("file_exists", res.Exists).Msg("config reloaded")
	if w.onReload != nil {
		w.onReload(res.Config)
	}
	return res.Config, nil
}

// Current returns the last successfully loaded config, or the initial one.
func (w *ConfigWatcher) Current() *config.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}
