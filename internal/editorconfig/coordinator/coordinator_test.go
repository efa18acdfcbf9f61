package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/edconf/internal/editorconfig/apply"
	"github.com/dshills/edconf/internal/editorconfig/resolver"
	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/host"
	"github.com/dshills/edconf/internal/host/hosttest"
	"github.com/dshills/edconf/internal/notify"
)

// fakeParser serves fixed rule sets per path and records lookups.
type fakeParser struct {
	mu    sync.Mutex
	rules map[string]settings.RawConfig
	errs  map[string]error
	gates map[string]chan struct{}
	calls []string
}

func newFakeParser() *fakeParser {
	return &fakeParser{
		rules: make(map[string]settings.RawConfig),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (p *fakeParser) set(path string, raw settings.RawConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rules[path] = raw
	delete(p.errs, path)
}

func (p *fakeParser) fail(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[path] = err
}

func (p *fakeParser) gate(path string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gates[path] = ch
	return ch
}

func (p *fakeParser) Parse(_ context.Context, path string) (settings.RawConfig, error) {
	p.mu.Lock()
	p.calls = append(p.calls, path)
	gate := p.gates[path]
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.errs[path]; err != nil {
		return nil, err
	}
	return p.rules[path].Clone(), nil
}

func (p *fakeParser) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakeParser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

type harness struct {
	ws      *hosttest.Workspace
	parser  *fakeParser
	coord   *Coordinator
	changes *changeLog
}

type changeLog struct {
	mu  sync.Mutex
	all []notify.Change
}

func (l *changeLog) add(c notify.Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append(l.all, c)
}

func (l *changeLog) types() []notify.ChangeType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]notify.ChangeType, len(l.all))
	for i, c := range l.all {
		out[i] = c.Type
	}
	return out
}

func (l *changeLog) last() notify.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.all[len(l.all)-1]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ws:      hosttest.NewWorkspace(),
		parser:  newFakeParser(),
		changes: &changeLog{},
	}
	n := notify.New()
	n.Subscribe(h.changes.add)
	t.Cleanup(n.Close)

	h.coord = New(
		h.ws,
		resolver.New(h.parser),
		apply.New(hosttest.DefaultPreferences(), h.ws, nil),
		nil,
		Options{Notifier: n},
	)
	t.Cleanup(h.coord.Deactivate)
	return h
}

func (h *harness) open(id, path, text string) (*hosttest.Buffer, *hosttest.Editor, *hosttest.GuideView) {
	buf := hosttest.NewBuffer(id, path, text)
	ed := hosttest.NewEditor(buf, "text.plain")
	guide := hosttest.NewGuideView(80)
	h.ws.Open(ed, guide)
	return buf, ed, guide
}

func (h *harness) phase(t *testing.T, id string) string {
	t.Helper()
	snap, ok := h.coord.Snapshot(host.BufferID(id))
	require.True(t, ok, "buffer %s not tracked", id)
	return snap.Phase
}

func TestCoordinator_AppliesResolvedSettings(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{
		"indent_style":    "tab",
		"indent_size":     "4",
		"max_line_length": "100",
	})
	_, ed, guide := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	assert.Equal(t, "applied", h.phase(t, "a"))
	assert.False(t, ed.SoftTabs())
	assert.Equal(t, 4, ed.TabLength())
	assert.Equal(t, 100, ed.PreferredLineLength())
	assert.Equal(t, []int{100}, guide.Columns())

	require.Equal(t, []notify.ChangeType{notify.ChangeApplied}, h.changes.types())
	assert.Equal(t, state.SeverityNormal, h.changes.last().Severity)
}

func TestCoordinator_EmptyResultLeavesEditorUntouched(t *testing.T) {
	h := newHarness(t)
	buf, _, guide := h.open("a", "/p/a.txt", "x  ")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	assert.Equal(t, []string{"/p/a.txt"}, h.parser.Calls())
	assert.Equal(t, "observed", h.phase(t, "a"))
	assert.Empty(t, buf.Calls(), "no editor or buffer setter may run")
	assert.Empty(t, guide.Calls())
	assert.Empty(t, h.changes.types())

	buf.Save("")
	h.coord.Wait()
	assert.Equal(t, "x  ", buf.Text(), "save hooks are inert without rules")
	assert.Len(t, h.parser.Calls(), 1, "saving under the same path does not re-resolve")
}

func TestCoordinator_SecondEditorOfResolvedBuffer(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"indent_style": "tab"})
	buf, _, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	second := hosttest.NewEditor(buf, "text.plain")
	h.ws.Open(second, nil)
	h.coord.Wait()

	assert.False(t, second.SoftTabs())
	assert.Len(t, h.parser.Calls(), 1)
}

func TestCoordinator_PathlessBufferResolvesOnFirstSave(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/new.txt", settings.RawConfig{"indent_style": "tab"})
	buf, ed, _ := h.open("a", "", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()
	assert.Empty(t, h.parser.Calls())
	assert.Equal(t, "observed", h.phase(t, "a"))

	buf.Save("/p/new.txt")
	h.coord.Wait()
	assert.Equal(t, []string{"/p/new.txt"}, h.parser.Calls())
	assert.Equal(t, "applied", h.phase(t, "a"))
	assert.False(t, ed.SoftTabs())

	buf.Save("")
	h.coord.Wait()
	assert.Len(t, h.parser.Calls(), 1, "applied buffers do not re-resolve on save")
}

func TestCoordinator_SaveRunsPreSaveRules(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{
		"trim_trailing_whitespace": true,
		"insert_final_newline":     true,
	})
	buf, _, _ := h.open("a", "/p/a.txt", "a  \nb\t\n\n\n")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	buf.Save("")
	assert.Equal(t, "a\nb\n", buf.Text())
}

func TestCoordinator_ConfigSaveReResolvesBuffersBelow(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/sub/a.txt", settings.RawConfig{"indent_size": "2"})
	h.parser.set("/q/b.txt", settings.RawConfig{"indent_size": "2"})
	_, inside, _ := h.open("a", "/p/sub/a.txt", "x")
	h.open("b", "/q/b.txt", "x")
	cfg, _, _ := h.open("cfg", "/p/.editorconfig", "root = true")

	h.coord.Activate(context.Background())
	h.coord.Wait()
	h.parser.Reset()

	h.parser.set("/p/sub/a.txt", settings.RawConfig{"indent_size": "8"})
	cfg.Save("")
	h.coord.Wait()

	calls := h.parser.Calls()
	assert.Contains(t, calls, "/p/sub/a.txt")
	assert.NotContains(t, calls, "/q/b.txt")
	assert.Equal(t, 8, inside.TabLength())
}

func TestCoordinator_ConfigFileChanged(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"indent_size": "2"})
	_, ed, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	h.parser.set("/p/a.txt", settings.RawConfig{"indent_size": "6"})
	h.coord.ConfigFileChanged("/p/.editorconfig")
	h.coord.Wait()
	assert.Equal(t, 6, ed.TabLength())

	h.coord.ConfigFileChanged("/elsewhere/.editorconfig")
	h.coord.Wait()
	assert.Len(t, h.parser.Calls(), 2)
}

func TestCoordinator_FailureKeepsPreviousSettings(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"indent_style": "tab"})
	_, ed, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	boom := errors.New("bad glob")
	h.parser.fail("/p/a.txt", boom)
	h.coord.ConfigFileChanged("/p/.editorconfig")
	h.coord.Wait()

	assert.Equal(t, "applied", h.phase(t, "a"))
	assert.False(t, ed.SoftTabs())

	last := h.changes.last()
	assert.Equal(t, notify.ChangeFailed, last.Type)
	assert.ErrorIs(t, last.Err, boom)
	assert.True(t, last.Settings.IndentStyle.Is(settings.IndentTab))
}

func TestCoordinator_FailureBeforeFirstResult(t *testing.T) {
	h := newHarness(t)
	h.parser.fail("/p/a.txt", errors.New("unreadable"))
	buf, _, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	assert.Equal(t, "observed", h.phase(t, "a"))
	assert.Empty(t, buf.Calls())
}

func TestCoordinator_StaleResultIsDropped(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/old.txt", settings.RawConfig{"indent_size": "3"})
	h.parser.set("/p/new.txt", settings.RawConfig{"indent_size": "5"})
	release := h.parser.gate("/p/old.txt")
	buf, ed, _ := h.open("a", "/p/old.txt", "x")

	h.coord.Activate(context.Background())
	buf.Save("/p/new.txt")

	close(release)
	h.coord.Wait()

	assert.Equal(t, 5, ed.TabLength())
	snap, ok := h.coord.Snapshot("a")
	require.True(t, ok)
	assert.Equal(t, "/p/new.txt", snap.ResolvedPath)
	assert.Equal(t, "applied", snap.Phase)
}

func TestCoordinator_ActivePaneItemReapplies(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"indent_style": "tab"})
	_, ed, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	ed.SetSoftTabs(true)
	h.ws.Activate(host.TextEditorItem{Editor: ed})
	assert.False(t, ed.SoftTabs())

	before := len(h.changes.types())
	h.ws.Activate(host.OtherItem{Kind: "settings"})
	assert.Len(t, h.changes.types(), before, "non-editor items are ignored")
}

func TestCoordinator_ReapplyAll(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"indent_size": "4"})
	_, ed, _ := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()

	ed.SetTabLength(9)
	h.coord.ReapplyAll()
	assert.Equal(t, 4, ed.TabLength())
}

func TestCoordinator_DestroyReleasesBuffer(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"max_line_length": "100"})
	buf, ed, guide := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Wait()
	require.Equal(t, 1, h.coord.applier.Guides().Len())

	// The host drops the editor and its guide before destroying the buffer.
	h.ws.Close(ed)
	buf.Destroy()

	willSave, didSave, destroy := buf.Subscribers()
	assert.Zero(t, willSave+didSave+destroy)
	_, ok := h.coord.Snapshot("a")
	assert.False(t, ok)
	assert.Equal(t, notify.ChangeReleased, h.changes.last().Type)

	guide.Refresh()
	assert.Equal(t, []int{80}, guide.Columns(), "guide override removed")
	assert.Zero(t, h.coord.applier.Guides().Len())
}

func TestCoordinator_ClosingOneOfTwoEditorsDetachesItsGuide(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"max_line_length": "100"})
	buf, first, firstGuide := h.open("a", "/p/a.txt", "x")
	second := hosttest.NewEditor(buf, "text.plain")
	secondGuide := hosttest.NewGuideView(80)
	h.ws.Open(second, secondGuide)

	h.coord.Activate(context.Background())
	h.coord.Wait()
	require.Equal(t, 2, h.coord.applier.Guides().Len())

	h.ws.Close(first)

	firstGuide.Refresh()
	assert.Equal(t, []int{80}, firstGuide.Columns())
	secondGuide.Refresh()
	assert.Equal(t, []int{100}, secondGuide.Columns(), "other editor keeps its override")
	assert.Equal(t, 1, h.coord.applier.Guides().Len())
	_, ok := h.coord.Snapshot("a")
	assert.True(t, ok, "buffer stays tracked while shown")
}

func TestCoordinator_Deactivate(t *testing.T) {
	h := newHarness(t)
	h.parser.set("/p/a.txt", settings.RawConfig{"max_line_length": "100"})
	buf, _, guide := h.open("a", "/p/a.txt", "x")

	h.coord.Activate(context.Background())
	h.coord.Activate(context.Background())
	h.coord.Wait()

	editors, panes := h.ws.Observers()
	assert.Equal(t, 1, editors)
	assert.Equal(t, 1, panes)
	assert.Equal(t, 1, h.ws.CloseObservers())

	h.coord.Deactivate()
	assert.False(t, h.coord.Active())

	editors, panes = h.ws.Observers()
	assert.Zero(t, editors+panes)
	assert.Zero(t, h.ws.CloseObservers())
	willSave, didSave, destroy := buf.Subscribers()
	assert.Zero(t, willSave+didSave+destroy)
	assert.Zero(t, h.coord.Registry().Len())

	guide.Refresh()
	assert.Equal(t, []int{80}, guide.Columns())

	h.open("b", "/p/a.txt", "x")
	h.coord.Wait()
	assert.Len(t, h.parser.Calls(), 1, "no observation after deactivation")
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, file string
		want      bool
	}{
		{"/p", "/p/a.txt", true},
		{"/p", "/p/sub/deep/a.txt", true},
		{"/p", "/q/a.txt", false},
		{"/p", "/pp/a.txt", false},
		{"/p/sub", "/p/a.txt", false},
		{"/p", "/p/..foo/a.txt", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, within(tt.dir, tt.file), "%s in %s", tt.file, tt.dir)
	}
}
