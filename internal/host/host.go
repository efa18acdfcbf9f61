// Package host declares the surface of the host editor that the EditorConfig
// engine consumes: buffers, editors, the workspace, wrap-guide views and the
// host's scoped global preferences.
//
// The engine never owns any of these objects. Hosts implement the interfaces
// and hand them to the coordinator; the engine only reads and adjusts the
// formatting-relevant properties listed here.
package host

import (
	"regexp"
)

// BufferID identifies a buffer for the lifetime of the host process.
type BufferID string

// Scope is a host-defined grouping (typically a language) under which global
// preferences are looked up, e.g. "source.go".
type Scope string

// Buffer is the text model behind one or more editors.
//
// Rows are zero-indexed. A buffer whose text ends with a line break has an
// empty final row after it, so "a\n" has rows "a" and "".
type Buffer interface {
	// ID returns the stable identity of the buffer.
	ID() BufferID

	// Path returns the backing file path, or "" for unsaved buffers.
	Path() string

	// Encoding returns the normalized charset used when saving.
	Encoding() string
	SetEncoding(charset string)

	// PreferredLineEnding returns the line-ending sequence used when saving,
	// or "" when the host decides.
	PreferredLineEnding() string
	SetPreferredLineEnding(sequence string)

	// LineCount returns the number of rows (at least 1).
	LineCount() int

	// LastRow returns LineCount()-1.
	LastRow() int

	// LineForRow returns the row text without its line break.
	LineForRow(row int) string

	// IsRowBlank reports whether the row contains only whitespace.
	IsRowBlank(row int) bool

	// PreviousNonBlankRow returns the nearest non-blank row before row.
	PreviousNonBlankRow(row int) (int, bool)

	// DeleteRows removes rows start through end inclusive. When end is the
	// last row the line break preceding start is removed as well.
	DeleteRows(start, end int)

	// Append adds text at the end of the buffer.
	Append(text string)

	// BackwardsScanAndReplace replaces every match of re, scanning from the
	// end of the buffer towards the start. It returns the number of
	// replacements.
	BackwardsScanAndReplace(re *regexp.Regexp, replacement string) int

	// OnWillSave registers fn to run synchronously before the content is
	// persisted.
	OnWillSave(fn func()) Disposable

	// OnDidSave registers fn to run after the content was persisted.
	OnDidSave(fn func(path string)) Disposable

	// OnDidDestroy registers fn to run when the buffer is destroyed.
	OnDidDestroy(fn func()) Disposable
}

// Params carries generic editor property updates. Zero fields are ignored.
type Params struct {
	PreferredLineLength int
}

// Editor is a text-editing view onto a buffer.
type Editor interface {
	Buffer() Buffer

	// Path is the path of the editor's buffer.
	Path() string

	// RootScope is the scope used for preference lookups.
	RootScope() Scope

	SoftTabs() bool
	SetSoftTabs(soft bool)

	// UsesSoftTabs inspects the buffer content. The second result is false
	// when the content does not determine the indentation style.
	UsesSoftTabs() (soft bool, ok bool)

	TabLength() int
	SetTabLength(n int)

	PreferredLineLength() int

	// Update applies generic property changes.
	Update(p Params)
}

// Preferences are the host's own global defaults, looked up per scope.
type Preferences interface {
	TabLength(scope Scope) int
	SoftTabs(scope Scope) bool
	PreferredLineLength(scope Scope) int
	FileEncoding(scope Scope) string
}

// ColumnFunc computes the wrap-guide columns for a file.
type ColumnFunc func(path string, scope Scope) []int

// GuideView is the rendered wrap-guide element of an editor.
type GuideView interface {
	ColumnFunc() ColumnFunc
	SetColumnFunc(fn ColumnFunc)

	// Refresh recomputes and redraws the guide columns.
	Refresh()
}

// Workspace is the set of open editors.
type Workspace interface {
	// Editors returns all open editors.
	Editors() []Editor

	// ObserveEditors calls fn for every open editor and every editor opened
	// afterwards.
	ObserveEditors(fn func(Editor)) Disposable

	// ObserveActivePaneItem calls fn with the current active item and on
	// every change.
	ObserveActivePaneItem(fn func(PaneItem)) Disposable

	// OnDidCloseEditor registers fn to run when an editor is closed. It
	// runs before the editor's buffer is destroyed.
	OnDidCloseEditor(fn func(Editor)) Disposable

	// GuideView returns the rendered wrap guide of an editor, if any.
	GuideView(ed Editor) (GuideView, bool)
}
