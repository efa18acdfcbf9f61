// Package coordinator drives the EditorConfig lifecycle of every buffer in a
// workspace.
//
// The coordinator observes editors as they open, resolves the rule set for
// their buffers in the background, applies the result to every editor
// showing the buffer, runs the pre-save rules, and re-resolves when a buffer
// is saved under a new path or a config file changes. Host callbacks are
// serialized by a single mutex; resolution results are handed back through
// the dispatch function so hosts with a UI thread can marshal them.
package coordinator

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zoobzio/capitan"

	"github.com/dshills/edconf/internal/editorconfig/apply"
	"github.com/dshills/edconf/internal/editorconfig/resolver"
	"github.com/dshills/edconf/internal/editorconfig/savehook"
	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/host"
	"github.com/dshills/edconf/internal/logging"
	"github.com/dshills/edconf/internal/notify"
)

// Options configures a Coordinator.
type Options struct {
	// ConfigName is the base name of config files. Saving a buffer with
	// this name re-resolves the buffers below it. Defaults to
	// ".editorconfig".
	ConfigName string

	// Dispatch runs resolution completions. Defaults to running them
	// inline on the resolving goroutine.
	Dispatch func(fn func())

	// Notifier receives status changes. May be nil.
	Notifier *notify.Notifier

	// Logger defaults to a no-op logger.
	Logger *logging.Logger
}

// Coordinator owns the per-buffer EditorConfig lifecycle of a workspace.
type Coordinator struct {
	mu sync.Mutex

	ws       host.Workspace
	resolver *resolver.Resolver
	applier  *apply.Applier
	registry *state.Registry

	notifier   *notify.Notifier
	logger     *logging.Logger
	configName string
	dispatch   func(fn func())

	active bool
	ctx    context.Context
	cancel context.CancelFunc
	subs   *host.CompositeDisposable

	inflight sync.WaitGroup
}

// New creates a Coordinator. It does nothing until Activate is called.
func New(ws host.Workspace, res *resolver.Resolver, applier *apply.Applier, registry *state.Registry, opts Options) *Coordinator {
	if registry == nil {
		registry = state.NewRegistry()
	}
	if opts.ConfigName == "" {
		opts.ConfigName = resolver.DefaultConfigName
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Coordinator{
		ws:         ws,
		resolver:   res,
		applier:    applier,
		registry:   registry,
		notifier:   opts.Notifier,
		logger:     opts.Logger.WithComponent("coordinator"),
		configName: opts.ConfigName,
		dispatch:   opts.Dispatch,
	}
}

// Registry returns the per-buffer state registry.
func (c *Coordinator) Registry() *state.Registry { return c.registry }

// Activate starts observing the workspace. Existing editors are observed
// immediately. Calling Activate twice is a no-op.
func (c *Coordinator) Activate(ctx context.Context) {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	subs := &host.CompositeDisposable{}
	c.subs = subs
	c.mu.Unlock()

	// Observers replay synchronously and take the lock themselves.
	subs.Add(c.ws.ObserveEditors(c.observeEditor))
	subs.Add(c.ws.ObserveActivePaneItem(c.onActivePaneItem))
	subs.Add(c.ws.OnDidCloseEditor(c.onEditorClosed))
	c.logger.Debug("activated")
}

// Deactivate releases every subscription and forgets all buffer state.
// Pending resolutions complete as no-ops.
func (c *Coordinator) Deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.cancel()
	subs := c.subs
	c.subs = nil
	c.registry.Clear()
	c.applier.Guides().DetachAll()
	c.mu.Unlock()

	subs.Dispose()
	c.logger.Debug("deactivated")
}

// Active reports whether the coordinator is observing the workspace.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Wait blocks until every resolution started so far has completed.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// Snapshot returns a copy of the state of buffer id.
func (c *Coordinator) Snapshot(id host.BufferID) (state.Snapshot, bool) {
	st, ok := c.registry.Get(id)
	if !ok {
		return state.Snapshot{}, false
	}
	return st.Snapshot(), true
}

// ReapplyAll re-applies the settings of every resolved buffer to its
// editors. Hosts call it after their own preferences change.
func (c *Coordinator) ReapplyAll() {
	c.mu.Lock()
	var changes []notify.Change
	if c.active {
		seen := make(map[host.BufferID]bool)
		for _, ed := range c.ws.Editors() {
			st, ok := c.stateFor(ed)
			if !ok || seen[st.BufferID()] || st.Phase() != state.PhaseApplied {
				continue
			}
			seen[st.BufferID()] = true
			changes = append(changes, c.applyAll(st))
		}
	}
	c.mu.Unlock()
	c.publish(changes...)
}

// ConfigFileChanged re-resolves every open buffer located in the directory
// of the config file at path, or below it.
func (c *Coordinator) ConfigFileChanged(path string) {
	c.mu.Lock()
	n := c.configFileChangedLocked(path)
	ctx := c.ctx
	c.mu.Unlock()

	if n > 0 {
		capitan.Emit(ctx, ConfigChanged,
			KeyPath.Field(path),
			KeyBuffers.Field(n),
		)
	}
}

func (c *Coordinator) configFileChangedLocked(path string) int {
	if !c.active {
		return 0
	}
	dir := filepath.Dir(filepath.Clean(path))
	seen := make(map[host.BufferID]bool)
	n := 0
	for _, ed := range c.ws.Editors() {
		st, ok := c.stateFor(ed)
		if !ok || seen[st.BufferID()] {
			continue
		}
		seen[st.BufferID()] = true
		p := st.Buffer().Path()
		if p == "" || !within(dir, p) {
			continue
		}
		c.resolver.Forget(p)
		c.resolve(st)
		n++
	}
	c.logger.WithField("path", path).Debug("config changed, re-resolving %d buffers", n)
	return n
}

func (c *Coordinator) observeEditor(ed host.Editor) {
	c.mu.Lock()
	var changes []notify.Change
	defer func() {
		c.mu.Unlock()
		c.publish(changes...)
	}()

	if !c.active {
		return
	}
	buf := ed.Buffer()
	if buf == nil {
		return
	}

	st, created := c.registry.Ensure(buf)
	if created {
		c.track(st)
		st.SetPhase(state.PhaseObserved)
	}

	switch st.Phase() {
	case state.PhaseApplied:
		// Another editor of an already resolved buffer.
		if out := c.applier.Apply(ed, st); out.Applied {
			changes = append(changes, appliedChange(st, out))
		}
	case state.PhaseObserved:
		if p := buf.Path(); p != "" && p != st.RequestedPath() {
			c.resolve(st)
		}
	}
}

func (c *Coordinator) track(st *state.BufferConfigState) {
	buf := st.Buffer()
	id := buf.ID()
	st.Subscriptions().Add(
		buf.OnWillSave(func() {
			savehook.Run(buf, st.Settings())
		}),
		buf.OnDidSave(func(path string) {
			c.onDidSave(st, path)
		}),
		buf.OnDidDestroy(func() {
			c.release(id)
		}),
	)
}

func (c *Coordinator) onDidSave(st *state.BufferConfigState, path string) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	if cur, ok := c.registry.Get(st.BufferID()); !ok || cur != st {
		c.mu.Unlock()
		return
	}

	if path != "" && path != st.RequestedPath() {
		c.resolve(st)
	}

	n := 0
	if filepath.Base(path) == c.configName {
		n = c.configFileChangedLocked(path)
	}
	ctx := c.ctx
	c.mu.Unlock()

	if n > 0 {
		capitan.Emit(ctx, ConfigChanged,
			KeyPath.Field(path),
			KeyBuffers.Field(n),
		)
	}
}

func (c *Coordinator) onActivePaneItem(item host.PaneItem) {
	ed, ok := host.AsTextEditor(item)
	if !ok {
		return
	}

	c.mu.Lock()
	var changes []notify.Change
	if c.active {
		if st, ok := c.stateFor(ed); ok && st.Phase() == state.PhaseApplied {
			if out := c.applier.Apply(ed, st); out.Applied {
				changes = append(changes, appliedChange(st, out))
			}
		}
	}
	c.mu.Unlock()
	c.publish(changes...)
}

// onEditorClosed drops the guide override of ed. Its buffer may stay open
// in other editors.
func (c *Coordinator) onEditorClosed(ed host.Editor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.applier.Guides().DetachEditor(ed)
}

func (c *Coordinator) release(id host.BufferID) {
	c.mu.Lock()
	st, ok := c.registry.Get(id)
	if !ok {
		c.mu.Unlock()
		return
	}
	path := st.Buffer().Path()
	c.applier.Guides().DetachBuffer(id)
	c.registry.Remove(id)
	ctx := c.ctx
	c.mu.Unlock()

	c.logger.WithField("buffer", string(id)).Debug("released")
	capitan.Emit(ctx, BufferReleased, KeyPath.Field(path))
	c.publish(notify.Change{BufferID: id, Path: path, Type: notify.ChangeReleased})
}

// resolve starts a background lookup for st. Callers hold c.mu.
func (c *Coordinator) resolve(st *state.BufferConfigState) {
	path := st.Buffer().Path()
	gen := st.BeginResolve(path)
	ctx := c.ctx

	c.inflight.Add(1)
	go func() {
		res := c.resolver.Resolve(ctx, path)
		c.dispatch(func() {
			defer c.inflight.Done()
			c.complete(st, gen, res)
		})
	}()
}

func (c *Coordinator) complete(st *state.BufferConfigState, gen uint64, res resolver.Result) {
	c.mu.Lock()
	changes := c.completeLocked(st, gen, res)
	ctx := c.ctx
	c.mu.Unlock()

	for _, ch := range changes {
		switch ch.Type {
		case notify.ChangeApplied:
			capitan.Emit(ctx, SettingsApplied,
				KeyPath.Field(ch.Path),
				KeySeverity.Field(ch.Severity.String()),
			)
		case notify.ChangeFailed:
			capitan.Emit(ctx, ResolveFailed,
				KeyPath.Field(ch.Path),
				KeyError.Field(ch.Err.Error()),
			)
		}
	}
	c.publish(changes...)
}

func (c *Coordinator) completeLocked(st *state.BufferConfigState, gen uint64, res resolver.Result) []notify.Change {
	if !c.active {
		return nil
	}
	if cur, ok := c.registry.Get(st.BufferID()); !ok || cur != st {
		return nil
	}
	if !st.Current(gen) {
		return nil
	}
	log := c.logger.WithField("path", res.Path)
	if st.Buffer().Path() != res.Path {
		// Moved without a save; the next save resolves the new path.
		log.Debug("dropping result for previous path")
		c.settle(st)
		return nil
	}

	switch res.Kind {
	case resolver.KindFailed:
		log.Warn("editorconfig lookup failed: %v", res.Err)
		c.settle(st)
		return []notify.Change{{
			BufferID: st.BufferID(),
			Path:     res.Path,
			Type:     notify.ChangeFailed,
			Settings: st.Settings(),
			Err:      res.Err,
		}}

	case resolver.KindEmpty:
		log.Debug("no editorconfig rules apply")
		st.SetPhase(state.PhaseObserved)
		return nil

	default:
		s := settings.Normalize(res.Raw)
		st.Update(res.Path, res.Raw, s)
		st.SetPhase(state.PhaseApplied)
		log.Debug("resolved %d properties", len(res.Raw))
		return []notify.Change{c.applyAll(st)}
	}
}

// settle restores the phase after a result was discarded.
func (c *Coordinator) settle(st *state.BufferConfigState) {
	if st.ResolvedPath() != "" {
		st.SetPhase(state.PhaseApplied)
		return
	}
	st.SetPhase(state.PhaseObserved)
}

// applyAll applies st to every editor showing its buffer.
func (c *Coordinator) applyAll(st *state.BufferConfigState) notify.Change {
	for _, ed := range c.ws.Editors() {
		c.applier.Apply(ed, st)
	}
	sev, diags := st.Severity()
	return appliedChange(st, apply.Outcome{Applied: true, Severity: sev, Diagnostics: diags})
}

func (c *Coordinator) stateFor(ed host.Editor) (*state.BufferConfigState, bool) {
	buf := ed.Buffer()
	if buf == nil {
		return nil, false
	}
	return c.registry.Get(buf.ID())
}

func (c *Coordinator) publish(changes ...notify.Change) {
	if c.notifier == nil {
		return
	}
	for _, ch := range changes {
		c.notifier.Notify(ch)
	}
}

func appliedChange(st *state.BufferConfigState, out apply.Outcome) notify.Change {
	return notify.Change{
		BufferID:    st.BufferID(),
		Path:        st.Buffer().Path(),
		Type:        notify.ChangeApplied,
		Severity:    out.Severity,
		Diagnostics: out.Diagnostics,
		Settings:    st.Settings(),
	}
}

// within reports whether file is located in dir or below it.
func within(dir, file string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(file))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
