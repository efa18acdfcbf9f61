// Package workspace is a headless host: file-backed buffers, editors, wrap
// guides and the set of open editors. It carries only the state the
// EditorConfig engine reads and adjusts, so the engine can run over files on
// disk.
package workspace

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// ErrEditorNotFound is returned for editors that are not open.
var ErrEditorNotFound = errors.New("editor not found")

// Workspace manages all open editors.
type Workspace struct {
	mu     sync.RWMutex
	prefs  host.Preferences
	order  []*Editor
	byPath map[string]*Editor
	guides map[*Editor]*GuideView
	active host.PaneItem

	editorObs listeners[func(host.Editor)]
	paneObs   listeners[func(host.PaneItem)]
	closeObs  listeners[func(host.Editor)]
}

// New creates an empty workspace using prefs for new editors.
func New(prefs host.Preferences) *Workspace {
	return &Workspace{
		prefs:  prefs,
		byPath: make(map[string]*Editor),
		guides: make(map[*Editor]*GuideView),
	}
}

// Open opens the file at path and makes it active. An already open file
// returns its existing editor.
func (w *Workspace) Open(path string) (*Editor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if ed, ok := w.Get(abs); ok {
		w.Activate(ed)
		return ed, nil
	}

	buf, err := LoadBuffer(abs)
	if err != nil {
		return nil, err
	}
	ed := w.OpenBuffer(buf)
	w.Activate(ed)
	return ed, nil
}

// OpenBuffer adds an editor for buf with a wrap guide and notifies editor
// observers.
func (w *Workspace) OpenBuffer(buf *Buffer) *Editor {
	ed := NewEditor(buf, w.prefs)
	guide := NewGuideView(ed, w.prefs)

	w.mu.Lock()
	w.order = append(w.order, ed)
	if p := buf.Path(); p != "" {
		w.byPath[p] = ed
	}
	w.guides[ed] = guide
	w.mu.Unlock()

	buf.OnDidSave(func(path string) { w.track(ed, path) })

	for _, fn := range w.editorObs.snapshot() {
		fn(ed)
	}
	return ed
}

// CreateScratch opens an editor on a new buffer without a path.
func (w *Workspace) CreateScratch(text string) *Editor {
	return w.OpenBuffer(NewBuffer("", text))
}

// track indexes ed under the path its buffer was saved to.
func (w *Workspace) track(ed *Editor, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, e := range w.byPath {
		if e == ed && p != path {
			delete(w.byPath, p)
		}
	}
	w.byPath[path] = ed
	ed.SetRootScope(ScopeForPath(path))
}

// Close removes an editor, notifies close observers and destroys its buffer
// when no other editor shows it.
func (w *Workspace) Close(ed *Editor) error {
	w.mu.Lock()
	idx := -1
	for i, e := range w.order {
		if e == ed {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return ErrEditorNotFound
	}
	w.order = append(w.order[:idx], w.order[idx+1:]...)
	delete(w.guides, ed)
	for p, e := range w.byPath {
		if e == ed {
			delete(w.byPath, p)
		}
	}
	shared := false
	for _, e := range w.order {
		if e.buffer == ed.buffer {
			shared = true
			break
		}
	}
	if cur, ok := host.AsTextEditor(w.active); ok && cur == host.Editor(ed) {
		w.active = nil
	}
	w.mu.Unlock()

	for _, fn := range w.closeObs.snapshot() {
		fn(ed)
	}
	if !shared {
		ed.buffer.Destroy()
	}
	return nil
}

// CloseAll closes every editor.
func (w *Workspace) CloseAll() {
	for _, ed := range w.All() {
		_ = w.Close(ed)
	}
}

// Activate makes ed the active pane item.
func (w *Workspace) Activate(ed *Editor) {
	w.ActivateItem(host.TextEditorItem{Editor: ed})
}

// ActivateItem makes item the active pane item and notifies observers.
func (w *Workspace) ActivateItem(item host.PaneItem) {
	w.mu.Lock()
	w.active = item
	w.mu.Unlock()
	for _, fn := range w.paneObs.snapshot() {
		fn(item)
	}
}

// Active returns the active pane item, or nil.
func (w *Workspace) Active() host.PaneItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

// Get returns the editor of an open file by absolute path.
func (w *Workspace) Get(path string) (*Editor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ed, ok := w.byPath[path]
	return ed, ok
}

// All returns the open editors in open order.
func (w *Workspace) All() []*Editor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Editor(nil), w.order...)
}

// Count returns the number of open editors.
func (w *Workspace) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Editors implements host.Workspace.
func (w *Workspace) Editors() []host.Editor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]host.Editor, len(w.order))
	for i, ed := range w.order {
		out[i] = ed
	}
	return out
}

// ObserveEditors implements host.Workspace.
func (w *Workspace) ObserveEditors(fn func(host.Editor)) host.Disposable {
	d := w.editorObs.add(fn)
	for _, ed := range w.All() {
		fn(ed)
	}
	return d
}

// ObserveActivePaneItem implements host.Workspace.
func (w *Workspace) ObserveActivePaneItem(fn func(host.PaneItem)) host.Disposable {
	d := w.paneObs.add(fn)
	if item := w.Active(); item != nil {
		fn(item)
	}
	return d
}

// OnDidCloseEditor implements host.Workspace.
func (w *Workspace) OnDidCloseEditor(fn func(host.Editor)) host.Disposable {
	return w.closeObs.add(fn)
}

// GuideView implements host.Workspace.
func (w *Workspace) GuideView(ed host.Editor) (host.GuideView, bool) {
	e, ok := ed.(*Editor)
	if !ok {
		return nil, false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	g, ok := w.guides[e]
	if !ok {
		return nil, false
	}
	return g, true
}

// Guide returns the concrete wrap guide of ed.
func (w *Workspace) Guide(ed *Editor) (*GuideView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	g, ok := w.guides[ed]
	return g, ok
}

var _ host.Workspace = (*Workspace)(nil)
