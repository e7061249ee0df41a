// Package watcher reloads layout profiles when the config file changes.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"atelier/internal/config"
	"atelier/internal/layout"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   *log.Logger
}

// New creates a new file watcher
func New(path string, onChange func(), logger *log.Logger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the file for changes.
// It blocks until the context is cancelled or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are seen
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := fw.Add(dir); err != nil {
		return err
	}

	w.logger.Info("watching config", "path", w.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.fire)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "err", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) fire() {
	w.logger.Debug("file changed", "path", w.path)
	w.onChange()
}

// ProfileSetter accepts a new pair of layout profiles
type ProfileSetter interface {
	SetProfiles(local, global layout.Profile) error
}

// ProfileReloader returns a callback that re-reads the config at path and
// hands its profiles to target. A broken file keeps the current profiles.
func ProfileReloader(path string, target ProfileSetter, logger *log.Logger) func() {
	return func() {
		cfg, _, err := config.LoadFromPath(path)
		if err != nil {
			logger.Error("config reload failed, keeping current profiles", "path", path, "err", err)
			return
		}
		local, global := cfg.Profiles()
		if err := target.SetProfiles(local, global); err != nil {
			logger.Error("rejected reloaded profiles", "path", path, "err", err)
		}
	}
}
