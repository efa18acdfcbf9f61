package apply

import (
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// LengthLookup returns the line length that overrides the guide column, if
// any.
type LengthLookup func() (int, bool)

// Owner identifies the editor and buffer an override serves.
type Owner struct {
	Editor host.Editor
	Buffer host.BufferID
}

// GuideOverride decorates a wrap guide's column computation. The original
// computation stays reachable through Original.
type GuideOverride struct {
	mu       sync.RWMutex
	original host.ColumnFunc
	lookup   LengthLookup
	owner    Owner
}

// Original returns the column function the guide had before the override.
func (o *GuideOverride) Original() host.ColumnFunc {
	return o.original
}

// Owner returns the editor and buffer the override currently serves.
func (o *GuideOverride) Owner() Owner {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

// Columns returns the override length as the single guide column, or
// delegates to the original computation.
func (o *GuideOverride) Columns(path string, scope host.Scope) []int {
	o.mu.RLock()
	lookup := o.lookup
	o.mu.RUnlock()

	if lookup != nil {
		if n, ok := lookup(); ok {
			return []int{n}
		}
	}
	if o.original == nil {
		return nil
	}
	return o.original(path, scope)
}

func (o *GuideOverride) retarget(owner Owner, lookup LengthLookup) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owner = owner
	o.lookup = lookup
}

// guides records, for every wrapped view, the interceptor holding its
// override. A view carries at most one override no matter how many
// interceptors attach to it.
var guides = struct {
	sync.Mutex
	owners map[host.GuideView]*GuideInterceptor
}{owners: make(map[host.GuideView]*GuideInterceptor)}

// GuideInterceptor installs at most one GuideOverride per guide view.
type GuideInterceptor struct {
	// guarded by guides
	overrides map[host.GuideView]*GuideOverride
}

// NewGuideInterceptor creates an interceptor with no attached views.
func NewGuideInterceptor() *GuideInterceptor {
	return &GuideInterceptor{overrides: make(map[host.GuideView]*GuideOverride)}
}

// Attach wraps the column computation of view. If view already carries an
// override, installed by this or another interceptor, only its owner and
// lookup are replaced and g takes it over. attached reports whether a new
// override was installed.
func (g *GuideInterceptor) Attach(view host.GuideView, owner Owner, lookup LengthLookup) (o *GuideOverride, attached bool) {
	guides.Lock()
	defer guides.Unlock()

	if prev, ok := guides.owners[view]; ok {
		o = prev.overrides[view]
		if prev != g {
			delete(prev.overrides, view)
			g.overrides[view] = o
			guides.owners[view] = g
		}
		o.retarget(owner, lookup)
		return o, false
	}

	o = &GuideOverride{original: view.ColumnFunc(), lookup: lookup, owner: owner}
	view.SetColumnFunc(o.Columns)
	g.overrides[view] = o
	guides.owners[view] = g
	return o, true
}

// Override returns the override attached to view.
func (g *GuideInterceptor) Override(view host.GuideView) (*GuideOverride, bool) {
	guides.Lock()
	defer guides.Unlock()
	o, ok := g.overrides[view]
	return o, ok
}

// Detach restores the original computation of view.
func (g *GuideInterceptor) Detach(view host.GuideView) {
	guides.Lock()
	o, ok := g.overrides[view]
	if ok {
		delete(g.overrides, view)
		delete(guides.owners, view)
	}
	guides.Unlock()

	if ok {
		view.SetColumnFunc(o.original)
		view.Refresh()
	}
}

// DetachEditor restores every view whose override serves ed.
func (g *GuideInterceptor) DetachEditor(ed host.Editor) {
	g.detachWhere(func(o Owner) bool { return o.Editor == ed })
}

// DetachBuffer restores every view whose override serves the buffer id.
func (g *GuideInterceptor) DetachBuffer(id host.BufferID) {
	g.detachWhere(func(o Owner) bool { return o.Buffer == id })
}

// DetachAll restores every attached view.
func (g *GuideInterceptor) DetachAll() {
	g.detachWhere(func(Owner) bool { return true })
}

func (g *GuideInterceptor) detachWhere(match func(Owner) bool) {
	guides.Lock()
	var views []host.GuideView
	for v, o := range g.overrides {
		if match(o.Owner()) {
			views = append(views, v)
		}
	}
	guides.Unlock()

	for _, v := range views {
		g.Detach(v)
	}
}

// Len returns the number of attached views.
func (g *GuideInterceptor) Len() int {
	guides.Lock()
	defer guides.Unlock()
	return len(g.overrides)
}
