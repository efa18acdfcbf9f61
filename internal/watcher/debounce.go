package watcher

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// DebouncedWatcher wraps a Watcher with event debouncing. Events arriving
// within the delay of each other are held back and delivered together, one
// per path, once the burst is quiet.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration
	clock clockz.Clock

	mu      sync.Mutex
	pending map[string]Event
	order   []string

	events   chan Event
	errors   chan error
	flushReq chan chan struct{}
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// DebounceOption configures a DebouncedWatcher.
type DebounceOption func(*DebouncedWatcher)

// WithClock sets the clock used for the debounce timer.
func WithClock(clock clockz.Clock) DebounceOption {
	return func(dw *DebouncedWatcher) {
		dw.clock = clock
	}
}

// NewDebouncedWatcher creates a debounced watcher wrapper.
func NewDebouncedWatcher(inner Watcher, delay time.Duration, opts ...DebounceOption) *DebouncedWatcher {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	dw := &DebouncedWatcher{
		inner:    inner,
		delay:    delay,
		clock:    clockz.RealClock,
		pending:  make(map[string]Event),
		events:   make(chan Event, 100),
		errors:   make(chan error, 100),
		flushReq: make(chan chan struct{}),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(dw)
	}

	dw.closedWg.Add(1)
	go dw.processLoop()

	return dw
}

// Watch starts watching a path.
func (dw *DebouncedWatcher) Watch(path string) error {
	return dw.inner.Watch(path)
}

// WatchRecursive starts watching a directory recursively.
func (dw *DebouncedWatcher) WatchRecursive(path string) error {
	return dw.inner.WatchRecursive(path)
}

// Unwatch stops watching a path.
func (dw *DebouncedWatcher) Unwatch(path string) error {
	return dw.inner.Unwatch(path)
}

// Events returns the debounced event channel.
func (dw *DebouncedWatcher) Events() <-chan Event {
	return dw.events
}

// Errors returns the error channel.
func (dw *DebouncedWatcher) Errors() <-chan error {
	return dw.errors
}

// IsWatching returns true if the path is being watched.
func (dw *DebouncedWatcher) IsWatching(path string) bool {
	return dw.inner.IsWatching(path)
}

// WatchedPaths returns all watched paths.
func (dw *DebouncedWatcher) WatchedPaths() []string {
	return dw.inner.WatchedPaths()
}

// PendingCount returns the number of held-back events.
func (dw *DebouncedWatcher) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

// Flush delivers all pending events immediately.
func (dw *DebouncedWatcher) Flush() {
	done := make(chan struct{})
	select {
	case dw.flushReq <- done:
		<-done
	case <-dw.closeCh:
	}
}

// Close stops the debounced watcher and the inner watcher. Pending events
// are dropped.
func (dw *DebouncedWatcher) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	close(dw.closeCh)
	dw.mu.Unlock()

	dw.closedWg.Wait()
	close(dw.events)
	close(dw.errors)

	return dw.inner.Close()
}

func (dw *DebouncedWatcher) processLoop() {
	defer dw.closedWg.Done()

	var timer clockz.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}
	defer stop()

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-dw.closeCh:
			return

		case event, ok := <-dw.inner.Events():
			if !ok {
				dw.fire()
				return
			}
			dw.hold(event)
			stop()
			timer = dw.clock.NewTimer(dw.delay)

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			dw.forwardError(err)

		case <-timerC:
			timer = nil
			dw.fire()

		case done := <-dw.flushReq:
			stop()
			dw.fire()
			close(done)
		}
	}
}

// hold coalesces event with any pending event for the same path.
func (dw *DebouncedWatcher) hold(event Event) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if p, ok := dw.pending[event.Path]; ok {
		p.Op |= event.Op
		p.Timestamp = event.Timestamp
		dw.pending[event.Path] = p
		return
	}
	dw.pending[event.Path] = event
	dw.order = append(dw.order, event.Path)
}

func (dw *DebouncedWatcher) fire() {
	dw.mu.Lock()
	batch := make([]Event, 0, len(dw.order))
	for _, path := range dw.order {
		batch = append(batch, dw.pending[path])
	}
	dw.pending = make(map[string]Event)
	dw.order = nil
	dw.mu.Unlock()

	for _, event := range batch {
		select {
		case dw.events <- event:
		case <-dw.closeCh:
			return
		}
	}
}

func (dw *DebouncedWatcher) forwardError(err error) {
	select {
	case dw.errors <- err:
	case <-dw.closeCh:
	default:
	}
}

var _ Watcher = (*DebouncedWatcher)(nil)
