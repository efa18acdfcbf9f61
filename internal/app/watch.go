package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/edconf/internal/watcher"
)

// Watch watches every EditorConfig file below dir and re-resolves the open
// buffers affected by a change until ctx is done.
func (app *Application) Watch(ctx context.Context, dir string) error {
	if app.closed.Load() {
		return ErrClosed
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return NewOperationError("watch", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return NewOperationError("watch", abs, err)
	}
	if !info.IsDir() {
		return NewOperationError("watch", abs, ErrNotDirectory)
	}

	fsw, err := watcher.NewFSNotifyWatcher(watcher.WithFileName(app.configName))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	delay := time.Duration(app.Config().Watch.DebounceMS) * time.Millisecond
	w := watcher.NewDebouncedWatcher(fsw, delay)

	if err := w.WatchRecursive(abs); err != nil {
		w.Close()
		return NewOperationError("watch", abs, err)
	}
	return app.watchWith(ctx, w)
}

// watchWith forwards config file events from w to the coordinator. It
// closes w when ctx is done.
func (app *Application) watchWith(ctx context.Context, w watcher.Watcher) error {
	defer w.Close()
	log := app.logger.WithComponent("watch")
	log.Info("watching %v", w.WatchedPaths())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			log.WithFields(map[string]any{"path": ev.Path, "op": ev.Op.String()}).Debug("config file event")
			app.coordinator.ConfigFileChanged(ev.Path)
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			log.Warn("watcher error: %v", err)
		}
	}
}
