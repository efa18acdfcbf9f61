// Package watcher reports changes to EditorConfig files on disk.
//
// FSNotifyWatcher watches directory trees with fsnotify and forwards events
// for files with the configured name only. DebouncedWatcher coalesces the
// bursts editors produce when saving (create, write, chmod, rename) into one
// event per file.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change of one config file.
type Event struct {
	// Path is the absolute path of the file.
	Path      string
	Op        Op
	Timestamp time.Time
}

// Watcher monitors config files.
type Watcher interface {
	// Watch watches a single directory.
	Watch(path string) error

	// WatchRecursive watches a directory and all subdirectories that are
	// not ignored.
	WatchRecursive(path string) error

	Unwatch(path string) error

	// Events returns the channel of changes. It is closed by Close.
	Events() <-chan Event

	// Errors returns the channel of watcher errors. It is closed by Close.
	Errors() <-chan error

	Close() error

	IsWatching(path string) bool
	WatchedPaths() []string
}

// Config holds watcher configuration options.
type Config struct {
	// FileName is the base name of the files to report. Default
	// ".editorconfig".
	FileName string

	// BufferSize is the size of the event and error channels.
	// Default: 100
	BufferSize int

	// IgnoreDirs are base-name glob patterns of directories that are not
	// descended into.
	IgnoreDirs []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		FileName:   ".editorconfig",
		BufferSize: 100,
		IgnoreDirs: []string{".git", ".hg", ".svn", "node_modules"},
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithFileName sets the base name of reported files.
func WithFileName(name string) Option {
	return func(c *Config) {
		c.FileName = name
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithIgnoreDirs replaces the ignored directory patterns.
func WithIgnoreDirs(patterns ...string) Option {
	return func(c *Config) {
		c.IgnoreDirs = patterns
	}
}
