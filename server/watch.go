package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const configDebounce = 100 * time.Millisecond

// ConfigWatcher reloads the config file when it changes on disk. The
// parent directory is watched so editors that replace the file by rename
// are still seen.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewConfigWatcher starts watching path's directory
func NewConfigWatcher(path string, log *slog.Logger) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &ConfigWatcher{path: abs, watcher: w, log: log}, nil
}

// Run delivers each successfully parsed config to apply until ctx ends.
// Files that fail to parse are logged and skipped.
func (cw *ConfigWatcher) Run(ctx context.Context, apply func(Config)) error {
	defer cw.watcher.Close()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(configDebounce)
			} else {
				timer.Reset(configDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			cfg, err := LoadConfig(cw.path)
			if err != nil {
				cw.log.Warn("config reload rejected", "path", cw.path, "err", err)
				continue
			}
			cw.log.Info("config reloaded", "path", cw.path)
			apply(cfg)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			cw.log.Error("config watcher error", "err", err)
		}
	}
}
