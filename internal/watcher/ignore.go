package watcher

import (
	"path/filepath"
)

// ignoredDir reports whether a directory's base name matches one of the
// patterns. Malformed patterns never match.
func ignoredDir(patterns []string, dir string) bool {
	base := filepath.Base(dir)
	for _, p := range patterns {
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}
