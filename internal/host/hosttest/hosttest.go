// Package hosttest provides recording fakes of the host editor API for tests.
package hosttest

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// Recorder collects the names of mutating calls.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

type callbacks[F any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]F
}

func (c *callbacks[F]) add(fn F) host.Disposable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fns == nil {
		c.fns = make(map[int]F)
	}
	id := c.next
	c.next++
	c.fns[id] = fn
	return host.DisposableFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.fns, id)
	})
}

func (c *callbacks[F]) each(call func(F)) {
	c.mu.Lock()
	fns := make([]F, 0, len(c.fns))
	for i := 0; i < c.next; i++ {
		if fn, ok := c.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range fns {
		call(fn)
	}
}

func (c *callbacks[F]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

// Buffer is an in-memory host.Buffer.
type Buffer struct {
	*Recorder

	mu         sync.Mutex
	id         host.BufferID
	path       string
	lines      []string
	encoding   string
	lineEnding string

	willSave callbacks[func()]
	didSave  callbacks[func(string)]
	destroy  callbacks[func()]
}

// NewBuffer creates a buffer with the given identity, path and text.
func NewBuffer(id, path, text string) *Buffer {
	return &Buffer{
		Recorder: &Recorder{},
		id:       host.BufferID(id),
		path:     path,
		lines:    strings.Split(text, "\n"),
		encoding: "utf8",
	}
}

func (b *Buffer) ID() host.BufferID { return b.id }

func (b *Buffer) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

// SetPath changes the path without saving.
func (b *Buffer) SetPath(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
}

// Text returns the buffer content joined with "\n".
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

func (b *Buffer) Encoding() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encoding
}

func (b *Buffer) SetEncoding(cs string) {
	b.record("SetEncoding(%s)", cs)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoding = cs
}

func (b *Buffer) PreferredLineEnding() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lineEnding
}

func (b *Buffer) SetPreferredLineEnding(seq string) {
	b.record("SetPreferredLineEnding(%q)", seq)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = seq
}

func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

func (b *Buffer) LastRow() int { return b.LineCount() - 1 }

func (b *Buffer) LineForRow(row int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

func (b *Buffer) IsRowBlank(row int) bool {
	return strings.TrimSpace(b.LineForRow(row)) == ""
}

func (b *Buffer) PreviousNonBlankRow(row int) (int, bool) {
	for r := row - 1; r >= 0; r-- {
		if !b.IsRowBlank(r) {
			return r, true
		}
	}
	return 0, false
}

func (b *Buffer) DeleteRows(start, end int) {
	b.record("DeleteRows(%d,%d)", start, end)
	b.mu.Lock()
	defer b.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if end >= len(b.lines) {
		end = len(b.lines) - 1
	}
	if start > end {
		return
	}
	b.lines = append(b.lines[:start:start], b.lines[end+1:]...)
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
}

func (b *Buffer) Append(text string) {
	b.record("Append(%q)", text)
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := strings.Split(text, "\n")
	last := len(b.lines) - 1
	b.lines[last] += parts[0]
	b.lines = append(b.lines, parts[1:]...)
}

func (b *Buffer) BackwardsScanAndReplace(re *regexp.Regexp, repl string) int {
	b.mu.Lock()
	text := strings.Join(b.lines, "\n")
	n := len(re.FindAllStringIndex(text, -1))
	if n > 0 {
		b.lines = strings.Split(re.ReplaceAllString(text, repl), "\n")
	}
	b.mu.Unlock()
	if n > 0 {
		b.record("BackwardsScanAndReplace(%s)", re)
	}
	return n
}

func (b *Buffer) OnWillSave(fn func()) host.Disposable      { return b.willSave.add(fn) }
func (b *Buffer) OnDidSave(fn func(string)) host.Disposable { return b.didSave.add(fn) }
func (b *Buffer) OnDidDestroy(fn func()) host.Disposable    { return b.destroy.add(fn) }

// Subscribers returns the number of live will-save, did-save and destroy
// callbacks.
func (b *Buffer) Subscribers() (willSave, didSave, destroy int) {
	return b.willSave.len(), b.didSave.len(), b.destroy.len()
}

// Save runs will-save callbacks, optionally moves the buffer to path and runs
// did-save callbacks.
func (b *Buffer) Save(path string) {
	b.willSave.each(func(fn func()) { fn() })
	if path != "" {
		b.SetPath(path)
	}
	p := b.Path()
	b.didSave.each(func(fn func(string)) { fn(p) })
}

// Destroy runs destroy callbacks.
func (b *Buffer) Destroy() {
	b.destroy.each(func(fn func()) { fn() })
}

// Editor is an in-memory host.Editor.
type Editor struct {
	*Recorder

	mu         sync.Mutex
	buffer     host.Buffer
	scope      host.Scope
	softTabs   bool
	detected   *bool
	tabLength  int
	lineLength int
}

// NewEditor creates an editor showing buf.
func NewEditor(buf host.Buffer, scope host.Scope) *Editor {
	rec := &Recorder{}
	if b, ok := buf.(*Buffer); ok {
		rec = b.Recorder
	}
	return &Editor{
		Recorder:   rec,
		buffer:     buf,
		scope:      scope,
		softTabs:   true,
		tabLength:  2,
		lineLength: 80,
	}
}

// SetDetectedSoftTabs sets what UsesSoftTabs reports; nil means
// indeterminate.
func (e *Editor) SetDetectedSoftTabs(v *bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detected = v
}

// SwapBuffer replaces the buffer shown by the editor.
func (e *Editor) SwapBuffer(buf host.Buffer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = buf
}

func (e *Editor) Buffer() host.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

func (e *Editor) Path() string          { return e.Buffer().Path() }
func (e *Editor) RootScope() host.Scope { return e.scope }

func (e *Editor) SoftTabs() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.softTabs
}

func (e *Editor) SetSoftTabs(v bool) {
	e.record("SetSoftTabs(%t)", v)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.softTabs = v
}

func (e *Editor) UsesSoftTabs() (bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detected == nil {
		return false, false
	}
	return *e.detected, true
}

func (e *Editor) TabLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tabLength
}

func (e *Editor) SetTabLength(n int) {
	e.record("SetTabLength(%d)", n)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabLength = n
}

func (e *Editor) PreferredLineLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lineLength
}

func (e *Editor) Update(p host.Params) {
	e.record("Update(%d)", p.PreferredLineLength)
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.PreferredLineLength > 0 {
		e.lineLength = p.PreferredLineLength
	}
}

// Preferences is a fixed host.Preferences with optional per-scope tab lengths.
type Preferences struct {
	Tab        int
	Soft       bool
	LineLength int
	Charset    string
	ScopeTabs  map[host.Scope]int
}

// DefaultPreferences returns tab 2, soft tabs, 80 columns, utf8.
func DefaultPreferences() *Preferences {
	return &Preferences{Tab: 2, Soft: true, LineLength: 80, Charset: "utf8"}
}

func (p *Preferences) TabLength(scope host.Scope) int {
	if n, ok := p.ScopeTabs[scope]; ok {
		return n
	}
	return p.Tab
}
func (p *Preferences) SoftTabs(host.Scope) bool           { return p.Soft }
func (p *Preferences) PreferredLineLength(host.Scope) int { return p.LineLength }
func (p *Preferences) FileEncoding(host.Scope) string     { return p.Charset }

// GuideView is an in-memory wrap guide whose default columns come from a
// fixed preferred line length.
type GuideView struct {
	*Recorder

	mu       sync.Mutex
	fn       host.ColumnFunc
	columns  []int
	refreshN int
}

// NewGuideView creates a guide showing a single column at defaultColumn.
func NewGuideView(defaultColumn int) *GuideView {
	return &GuideView{
		Recorder: &Recorder{},
		fn: func(string, host.Scope) []int {
			return []int{defaultColumn}
		},
	}
}

func (g *GuideView) ColumnFunc() host.ColumnFunc {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fn
}

func (g *GuideView) SetColumnFunc(fn host.ColumnFunc) {
	g.record("SetColumnFunc")
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fn = fn
}

func (g *GuideView) Refresh() {
	g.mu.Lock()
	g.refreshN++
	g.mu.Unlock()
	g.Compute("", "")
}

// Compute runs the current column function and remembers the result.
func (g *GuideView) Compute(path string, scope host.Scope) []int {
	fn := g.ColumnFunc()
	cols := fn(path, scope)
	g.mu.Lock()
	g.columns = cols
	g.mu.Unlock()
	return cols
}

// Columns returns the columns computed by the last refresh.
func (g *GuideView) Columns() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.columns...)
}

// Refreshes returns how often Refresh ran.
func (g *GuideView) Refreshes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshN
}

// Workspace is an in-memory host.Workspace.
type Workspace struct {
	mu      sync.Mutex
	editors []host.Editor
	guides  map[host.Editor]host.GuideView
	active  host.PaneItem

	editorObs callbacks[func(host.Editor)]
	paneObs   callbacks[func(host.PaneItem)]
	closeObs  callbacks[func(host.Editor)]
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{guides: make(map[host.Editor]host.GuideView)}
}

// Open adds an editor, optionally with a wrap guide, and notifies observers.
func (w *Workspace) Open(ed host.Editor, guide host.GuideView) {
	w.mu.Lock()
	w.editors = append(w.editors, ed)
	if guide != nil {
		w.guides[ed] = guide
	}
	w.mu.Unlock()
	w.editorObs.each(func(fn func(host.Editor)) { fn(ed) })
}

// Close removes an editor and notifies close observers.
func (w *Workspace) Close(ed host.Editor) {
	w.mu.Lock()
	for i, e := range w.editors {
		if e == ed {
			w.editors = append(w.editors[:i], w.editors[i+1:]...)
			break
		}
	}
	delete(w.guides, ed)
	w.mu.Unlock()
	w.closeObs.each(func(fn func(host.Editor)) { fn(ed) })
}

// Activate makes item the active pane item and notifies observers.
func (w *Workspace) Activate(item host.PaneItem) {
	w.mu.Lock()
	w.active = item
	w.mu.Unlock()
	w.paneObs.each(func(fn func(host.PaneItem)) { fn(item) })
}

func (w *Workspace) Editors() []host.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]host.Editor(nil), w.editors...)
}

func (w *Workspace) ObserveEditors(fn func(host.Editor)) host.Disposable {
	for _, ed := range w.Editors() {
		fn(ed)
	}
	return w.editorObs.add(fn)
}

func (w *Workspace) ObserveActivePaneItem(fn func(host.PaneItem)) host.Disposable {
	w.mu.Lock()
	active := w.active
	w.mu.Unlock()
	if active != nil {
		fn(active)
	}
	return w.paneObs.add(fn)
}

func (w *Workspace) OnDidCloseEditor(fn func(host.Editor)) host.Disposable {
	return w.closeObs.add(fn)
}

func (w *Workspace) GuideView(ed host.Editor) (host.GuideView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.guides[ed]
	return g, ok
}

// Observers returns the number of live editor and pane observers.
func (w *Workspace) Observers() (editors, panes int) {
	return w.editorObs.len(), w.paneObs.len()
}

// CloseObservers returns the number of live close observers.
func (w *Workspace) CloseObservers() int {
	return w.closeObs.len()
}

var (
	_ host.Buffer      = (*Buffer)(nil)
	_ host.Editor      = (*Editor)(nil)
	_ host.Preferences = (*Preferences)(nil)
	_ host.GuideView   = (*GuideView)(nil)
	_ host.Workspace   = (*Workspace)(nil)
)
