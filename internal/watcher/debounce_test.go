package watcher

import (
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// chanWatcher is a Watcher fed by the test.
type chanWatcher struct {
	events chan Event
	errors chan error
	closed bool
}

func newChanWatcher() *chanWatcher {
	return &chanWatcher{events: make(chan Event, 10), errors: make(chan error, 10)}
}

func (c *chanWatcher) Watch(string) error          { return nil }
func (c *chanWatcher) WatchRecursive(string) error { return nil }
func (c *chanWatcher) Unwatch(string) error        { return ErrNotWatching }
func (c *chanWatcher) Events() <-chan Event        { return c.events }
func (c *chanWatcher) Errors() <-chan error        { return c.errors }
func (c *chanWatcher) IsWatching(string) bool      { return false }
func (c *chanWatcher) WatchedPaths() []string      { return nil }
func (c *chanWatcher) Close() error {
	c.closed = true
	return nil
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertQuiet(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDebouncedWatcher_CoalescesBurst(t *testing.T) {
	clock := clockz.NewFakeClock()
	inner := newChanWatcher()
	dw := NewDebouncedWatcher(inner, 100*time.Millisecond, WithClock(clock))
	defer dw.Close()

	inner.events <- Event{Path: "/p/.editorconfig", Op: OpCreate}
	inner.events <- Event{Path: "/p/.editorconfig", Op: OpWrite}
	inner.events <- Event{Path: "/q/.editorconfig", Op: OpWrite}

	waitFor(t, "2 pending paths", func() bool { return dw.PendingCount() == 2 })
	// Allow the loop to arm its timer
	time.Sleep(10 * time.Millisecond)
	assertQuiet(t, dw.Events())

	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()

	first := receive(t, dw.Events())
	if first.Path != "/p/.editorconfig" {
		t.Errorf("first.Path = %q, want /p/.editorconfig", first.Path)
	}
	if !first.Op.Has(OpCreate) || !first.Op.Has(OpWrite) {
		t.Errorf("first.Op = %v, want CREATE|WRITE", first.Op)
	}

	second := receive(t, dw.Events())
	if second.Path != "/q/.editorconfig" {
		t.Errorf("second.Path = %q, want /q/.editorconfig", second.Path)
	}
	assertQuiet(t, dw.Events())
	if n := dw.PendingCount(); n != 0 {
		t.Errorf("PendingCount() = %d, want 0", n)
	}
}

func TestDebouncedWatcher_Flush(t *testing.T) {
	inner := newChanWatcher()
	dw := NewDebouncedWatcher(inner, time.Hour)
	defer dw.Close()

	inner.events <- Event{Path: "/p/.editorconfig", Op: OpWrite}
	waitFor(t, "pending path", func() bool { return dw.PendingCount() == 1 })

	dw.Flush()
	if got := receive(t, dw.Events()).Path; got != "/p/.editorconfig" {
		t.Errorf("flushed path = %q", got)
	}
}

func TestDebouncedWatcher_ForwardsErrors(t *testing.T) {
	inner := newChanWatcher()
	dw := NewDebouncedWatcher(inner, 0)
	defer dw.Close()

	inner.errors <- ErrPathNotExist
	select {
	case err := <-dw.Errors():
		if !errors.Is(err, ErrPathNotExist) {
			t.Errorf("error = %v, want ErrPathNotExist", err)
		}
	case <-time.After(time.Second):
		t.Fatal("error not forwarded")
	}
}

func TestDebouncedWatcher_Close(t *testing.T) {
	inner := newChanWatcher()
	dw := NewDebouncedWatcher(inner, 0)

	if err := dw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := dw.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !inner.closed {
		t.Error("inner watcher not closed")
	}

	if _, ok := <-dw.Events(); ok {
		t.Error("events channel still open")
	}
	dw.Flush()
	if err := dw.Unwatch("/x"); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Unwatch = %v, want ErrNotWatching", err)
	}
}

func TestOp(t *testing.T) {
	op := OpCreate | OpWrite
	if !op.Has(OpWrite) {
		t.Error("expected WRITE")
	}
	if op.Has(OpRemove) {
		t.Error("unexpected REMOVE")
	}
	if s := OpWrite.String(); s != "WRITE" {
		t.Errorf("OpWrite.String() = %q", s)
	}
	if s := op.String(); s != "UNKNOWN" {
		t.Errorf("combined String() = %q, want UNKNOWN", s)
	}
}
