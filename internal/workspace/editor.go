package workspace

import (
	"strings"
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// Editor is a headless view onto a Buffer.
type Editor struct {
	mu sync.RWMutex

	buffer *Buffer
	scope  host.Scope

	softTabs   bool
	tabLength  int
	lineLength int
}

// NewEditor creates an editor for buf, seeded from the host preferences of
// the buffer's scope.
func NewEditor(buf *Buffer, prefs host.Preferences) *Editor {
	scope := ScopeForPath(buf.Path())
	return &Editor{
		buffer:     buf,
		scope:      scope,
		softTabs:   prefs.SoftTabs(scope),
		tabLength:  prefs.TabLength(scope),
		lineLength: prefs.PreferredLineLength(scope),
	}
}

// Buffer implements host.Editor.
func (e *Editor) Buffer() host.Buffer { return e.buffer }

// TextBuffer returns the concrete buffer.
func (e *Editor) TextBuffer() *Buffer { return e.buffer }

// Path returns the path of the editor's buffer.
func (e *Editor) Path() string { return e.buffer.Path() }

// RootScope returns the scope used for preference lookups.
func (e *Editor) RootScope() host.Scope {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scope
}

// SetRootScope changes the scope, e.g. after a buffer got its first path.
func (e *Editor) SetRootScope(scope host.Scope) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scope = scope
}

// SoftTabs reports whether indentation inserts spaces.
func (e *Editor) SoftTabs() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.softTabs
}

// SetSoftTabs switches between space and tab indentation.
func (e *Editor) SetSoftTabs(soft bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.softTabs = soft
}

// UsesSoftTabs reports the indentation of the first indented row.
func (e *Editor) UsesSoftTabs() (bool, bool) {
	n := e.buffer.LineCount()
	for row := 0; row < n; row++ {
		line := e.buffer.LineForRow(row)
		switch {
		case strings.HasPrefix(line, "\t"):
			return false, true
		case strings.HasPrefix(line, " ") && strings.TrimSpace(line) != "":
			return true, true
		}
	}
	return false, false
}

// TabLength returns the display width of a tab.
func (e *Editor) TabLength() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tabLength
}

// SetTabLength sets the display width of a tab.
func (e *Editor) SetTabLength(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabLength = n
}

// PreferredLineLength returns the soft wrap column.
func (e *Editor) PreferredLineLength() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lineLength
}

// Update applies the non-zero fields of p.
func (e *Editor) Update(p host.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.PreferredLineLength > 0 {
		e.lineLength = p.PreferredLineLength
	}
}

var _ host.Editor = (*Editor)(nil)
