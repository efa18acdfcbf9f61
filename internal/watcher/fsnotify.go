package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSNotifyWatcher implements Watcher using fsnotify.
type FSNotifyWatcher struct {
	mu sync.RWMutex

	watcher *fsnotify.Watcher
	config  Config

	// Watched directories; true for recursive roots and their children.
	paths map[string]bool

	events chan Event
	errors chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewFSNotifyWatcher creates a new fsnotify-based watcher.
func NewFSNotifyWatcher(opts ...Option) (*FSNotifyWatcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 100
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{
		watcher: fsw,
		config:  config,
		paths:   make(map[string]bool),
		events:  make(chan Event, config.BufferSize),
		errors:  make(chan error, config.BufferSize),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch starts watching a directory.
func (w *FSNotifyWatcher) Watch(path string) error {
	return w.watch(path, false)
}

func (w *FSNotifyWatcher) watch(path string, recursive bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPathNotExist
		}
		return err
	}
	if _, ok := w.paths[absPath]; ok {
		return ErrAlreadyWatching
	}
	if err := w.watcher.Add(absPath); err != nil {
		return err
	}

	w.paths[absPath] = recursive
	return nil
}

// WatchRecursive watches a directory and all subdirectories.
func (w *FSNotifyWatcher) WatchRecursive(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return w.watch(filepath.Dir(absPath), false)
	}

	return filepath.WalkDir(absPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != absPath && ignoredDir(w.config.IgnoreDirs, p) {
			return filepath.SkipDir
		}
		switch watchErr := w.watch(p, true); {
		case watchErr == nil, errors.Is(watchErr, ErrAlreadyWatching):
		case errors.Is(watchErr, ErrWatcherClosed):
			return watchErr
		default:
			w.sendError(watchErr)
		}
		return nil
	})
}

// Unwatch stops watching a directory.
func (w *FSNotifyWatcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, ok := w.paths[absPath]; !ok {
		return ErrNotWatching
	}
	if err := w.watcher.Remove(absPath); err != nil {
		return err
	}
	delete(w.paths, absPath)
	return nil
}

// Events returns the event channel.
func (w *FSNotifyWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
func (w *FSNotifyWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.events)
	close(w.errors)

	return w.watcher.Close()
}

// IsWatching returns true if the directory is being watched.
func (w *FSNotifyWatcher) IsWatching(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.paths[absPath]
	return ok
}

// WatchedPaths returns all watched directories.
func (w *FSNotifyWatcher) WatchedPaths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.paths))
	for p := range w.paths {
		paths = append(paths, p)
	}
	return paths
}

func (w *FSNotifyWatcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *FSNotifyWatcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}

	if op.Has(OpCreate) && w.underRecursiveRoot(fsEvent.Name) {
		if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
			if !ignoredDir(w.config.IgnoreDirs, fsEvent.Name) {
				_ = w.WatchRecursive(fsEvent.Name)
			}
			return
		}
	}

	if filepath.Base(fsEvent.Name) != w.config.FileName {
		return
	}

	w.sendEvent(Event{
		Path:      fsEvent.Name,
		Op:        op,
		Timestamp: time.Now(),
	})
}

func (w *FSNotifyWatcher) underRecursiveRoot(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paths[filepath.Dir(path)]
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}

func (w *FSNotifyWatcher) sendEvent(event Event) {
	select {
	case w.events <- event:
	default:
		w.sendError(errors.New("event channel full, dropping event"))
	}
}

func (w *FSNotifyWatcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

var _ Watcher = (*FSNotifyWatcher)(nil)
