package workspace

import (
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// GuideView is a headless wrap guide. It computes its columns on Refresh.
type GuideView struct {
	mu      sync.RWMutex
	editor  *Editor
	fn      host.ColumnFunc
	columns []int
}

// NewGuideView creates the guide of ed. Its default column is the host's
// preferred line length for the scope.
func NewGuideView(ed *Editor, prefs host.Preferences) *GuideView {
	g := &GuideView{
		editor: ed,
		fn: func(_ string, scope host.Scope) []int {
			return []int{prefs.PreferredLineLength(scope)}
		},
	}
	g.Refresh()
	return g
}

// ColumnFunc returns the current column computation.
func (g *GuideView) ColumnFunc() host.ColumnFunc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fn
}

// SetColumnFunc replaces the column computation. It takes effect on the
// next Refresh.
func (g *GuideView) SetColumnFunc(fn host.ColumnFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fn = fn
}

// Refresh recomputes the columns for the editor's path and scope.
func (g *GuideView) Refresh() {
	fn := g.ColumnFunc()
	cols := fn(g.editor.Path(), g.editor.RootScope())
	g.mu.Lock()
	g.columns = cols
	g.mu.Unlock()
}

// Columns returns the columns computed by the last refresh.
func (g *GuideView) Columns() []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]int(nil), g.columns...)
}

var _ host.GuideView = (*GuideView)(nil)
