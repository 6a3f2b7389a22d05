package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"grassrenderer/simulation"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 250 * time.Millisecond

// Watcher hot-reloads the wind section of the settings file. Other sections
// need a restart.
type Watcher struct {
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	control *simulation.WindControl

	path     string
	debounce time.Duration
	reloads  func(ok bool)
}

// NewWatcher creates a watcher for path that applies reloaded wind to control.
func NewWatcher(logger *zap.Logger, path string, control *simulation.WindControl) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		logger:   logger,
		watcher:  watcher,
		control:  control,
		path:     abs,
		debounce: DefaultDebounce,
	}, nil
}

// OnReload registers a hook called after every reload attempt.
func (w *Watcher) OnReload(fn func(ok bool)) {
	w.reloads = fn
}

// Run watches until ctx is done. The directory is watched rather than the
// file so editors that save by rename keep working.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("Watching settings for wind changes", zap.String("path", w.path))

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain the timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.shouldProcessEvent(event) {
				w.logger.Debug("Settings change detected",
					zap.String("file", event.Name),
					zap.String("op", event.Op.String()))
				debounceTimer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case <-debounceTimer.C:
			w.reload()

		case <-ctx.Done():
			debounceTimer.Stop()
			w.logger.Info("Stopping settings watcher")
			return nil
		}
	}
}

// shouldProcessEvent keeps create and write events on the settings file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create == 0 && event.Op&fsnotify.Write == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) reload() {
	params, err := LoadWind(w.path)
	if err == nil {
		err = w.control.Set(params)
	}
	if err != nil {
		w.logger.Warn("Keeping previous wind, reload failed", zap.Error(err))
	} else {
		w.logger.Info("Wind reloaded",
			zap.Float32("magnitude", params.Magnitude),
			zap.Float32("waveLength", params.WaveLength),
			zap.Float32("wavePeriod", params.WavePeriod),
			zap.Float32("heading", params.Heading))
	}
	if w.reloads != nil {
		w.reloads(err == nil)
	}
}
