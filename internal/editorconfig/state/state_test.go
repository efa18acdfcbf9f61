package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/host"
	"github.com/dshills/edconf/internal/host/hosttest"
)

func TestRegistry_EnsureIsIdempotent(t *testing.T) {
	r := NewRegistry()
	buf := hosttest.NewBuffer("b1", "/p/a.go", "")

	st, created := r.Ensure(buf)
	require.True(t, created)
	assert.Equal(t, host.BufferID("b1"), st.BufferID())
	assert.Equal(t, PhaseUnobserved, st.Phase())

	again, created := r.Ensure(buf)
	assert.False(t, created)
	assert.Same(t, st, again)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveDisposesSubscriptions(t *testing.T) {
	r := NewRegistry()
	buf := hosttest.NewBuffer("b1", "", "")
	st, _ := r.Ensure(buf)

	released := 0
	st.Subscriptions().Add(host.DisposableFunc(func() { released++ }))

	r.Remove("b1")
	assert.Equal(t, 1, released)
	_, ok := r.Get("b1")
	assert.False(t, ok)

	r.Remove("b1")
	assert.Equal(t, 1, released)
}

func TestRegistry_EachAndClear(t *testing.T) {
	r := NewRegistry()
	released := 0
	for _, id := range []string{"a", "b", "c"} {
		st, _ := r.Ensure(hosttest.NewBuffer(id, "", ""))
		st.Subscriptions().Add(host.DisposableFunc(func() { released++ }))
	}

	seen := map[host.BufferID]bool{}
	r.Each(func(st *BufferConfigState) {
		seen[st.BufferID()] = true
		// re-entrant access must not deadlock
		_, _ = r.Get(st.BufferID())
	})
	assert.Len(t, seen, 3)

	r.Clear()
	assert.Equal(t, 3, released)
	assert.Zero(t, r.Len())
}

func TestBufferConfigState_Generations(t *testing.T) {
	st := newBufferConfigState(hosttest.NewBuffer("b", "", ""))

	first := st.BeginResolve("/p/a")
	second := st.BeginResolve("/p/b")
	assert.Equal(t, PhaseResolving, st.Phase())
	assert.Equal(t, "/p/b", st.RequestedPath())
	assert.False(t, st.Current(first))
	assert.True(t, st.Current(second))
}

func TestBufferConfigState_UpdateAndSnapshot(t *testing.T) {
	st := newBufferConfigState(hosttest.NewBuffer("b", "/p/x.txt", ""))
	assert.True(t, st.Settings().AllUnset())

	raw := settings.RawConfig{settings.KeyIndentStyle: "tab"}
	st.Update("/p/x.txt", raw, settings.Normalize(raw))
	raw[settings.KeyIndentStyle] = "space"

	assert.Equal(t, "tab", st.Raw()[settings.KeyIndentStyle], "raw is copied on update")
	assert.True(t, st.Settings().IndentStyle.Is(settings.IndentTab))
	assert.Equal(t, "/p/x.txt", st.ResolvedPath())

	assert.True(t, st.SetSeverity(SeverityWarning, []string{"x"}))
	assert.False(t, st.SetSeverity(SeverityWarning, []string{"x"}))
	st.SetPhase(PhaseApplied)

	snap := st.Snapshot()
	assert.Equal(t, host.BufferID("b"), snap.BufferID)
	assert.Equal(t, "/p/x.txt", snap.Path)
	assert.Equal(t, "applied", snap.Phase)
	assert.Equal(t, "warning", snap.Severity)
	assert.Equal(t, []string{"x"}, snap.Diagnostics)
}

func TestSeverityAndPhase_String(t *testing.T) {
	assert.Equal(t, "normal", SeverityNormal.String())
	assert.Equal(t, "subtle", SeveritySubtle.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
	assert.Equal(t, "resolving", PhaseResolving.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
