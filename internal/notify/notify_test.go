package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/edconf/internal/editorconfig/state"
)

func TestNew(t *testing.T) {
	n := New()
	if n == nil {
		t.Fatal("New() returned nil")
	}
	defer n.Close()
}

func TestNew_WithAsync(t *testing.T) {
	n := New(WithAsync(16))
	defer n.Close()
	if !n.async {
		t.Error("expected async = true")
	}
}

func TestChangeType_String(t *testing.T) {
	tests := []struct {
		ct   ChangeType
		want string
	}{
		{ChangeApplied, "applied"},
		{ChangeFailed, "failed"},
		{ChangeReleased, "released"},
		{ChangeType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var received atomic.Int32
	sub := n.Subscribe(func(change Change) {
		if change.Severity != state.SeverityWarning {
			t.Errorf("severity = %v, want warning", change.Severity)
		}
		received.Add(1)
	})

	n.Notify(Change{BufferID: "a", Severity: state.SeverityWarning})
	if received.Load() != 1 {
		t.Fatalf("received = %d, want 1", received.Load())
	}

	sub.Unsubscribe()
	n.Notify(Change{BufferID: "a", Severity: state.SeverityWarning})
	if received.Load() != 1 {
		t.Error("unsubscribed observer received notification")
	}
}

func TestNotifier_SubscribeBuffer(t *testing.T) {
	n := New()
	defer n.Close()

	var aChanges, bChanges atomic.Int32
	n.SubscribeBuffer("a", func(Change) { aChanges.Add(1) })
	subB := n.SubscribeBuffer("b", func(Change) { bChanges.Add(1) })

	n.Notify(Change{BufferID: "a"})
	n.Notify(Change{BufferID: "a"})
	n.Notify(Change{BufferID: "b"})

	if aChanges.Load() != 2 || bChanges.Load() != 1 {
		t.Errorf("a=%d b=%d, want 2 and 1", aChanges.Load(), bChanges.Load())
	}

	subB.Dispose()
	n.Notify(Change{BufferID: "b"})
	if bChanges.Load() != 1 {
		t.Error("disposed buffer observer received notification")
	}
	if _, ok := n.bufferObservers["b"]; ok {
		t.Error("empty observer set was not removed")
	}
}

func TestNotifier_Async(t *testing.T) {
	n := New(WithAsync(8))

	var mu sync.Mutex
	var got []ChangeType
	n.Subscribe(func(c Change) {
		mu.Lock()
		got = append(got, c.Type)
		mu.Unlock()
	})

	n.Notify(Change{BufferID: "a", Type: ChangeApplied})
	n.Notify(Change{BufferID: "a", Type: ChangeReleased})

	// Close drains pending changes
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != ChangeApplied || got[1] != ChangeReleased {
		t.Errorf("got %v", got)
	}
}

func TestNotifier_NotifyAfterClose(t *testing.T) {
	n := New()
	var called atomic.Bool
	n.Subscribe(func(Change) { called.Store(true) })
	n.Close()
	n.Close()

	done := make(chan struct{})
	go func() {
		n.Notify(Change{BufferID: "a"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after Close")
	}
	if called.Load() {
		t.Error("observer called after Close")
	}
}
