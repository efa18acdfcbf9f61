// Package notify delivers per-buffer EditorConfig status changes to UI
// collaborators such as a status-bar indicator.
//
// Observers subscribe to every buffer or to a single buffer. Delivery is
// synchronous by default; WithAsync moves it to a background goroutine.
package notify

import (
	"sync"

	"github.com/dshills/edconf/internal/editorconfig/settings"
	"github.com/dshills/edconf/internal/editorconfig/state"
	"github.com/dshills/edconf/internal/host"
)

// ChangeType represents the type of status change.
type ChangeType int

const (
	// ChangeApplied indicates settings were (re)applied to a buffer.
	ChangeApplied ChangeType = iota

	// ChangeFailed indicates a resolution failed and the previous settings
	// were kept.
	ChangeFailed

	// ChangeReleased indicates the buffer is no longer tracked.
	ChangeReleased
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeApplied:
		return "applied"
	case ChangeFailed:
		return "failed"
	case ChangeReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Change is a status change of one buffer.
type Change struct {
	BufferID host.BufferID
	Path     string
	Type     ChangeType

	Severity    state.Severity
	Diagnostics []string
	Settings    settings.Settings

	// Err is set for ChangeFailed.
	Err error
}

// Observer is called when a change occurs.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Dispose is Unsubscribe, so subscriptions can be grouped with other host
// disposables.
func (s *Subscription) Dispose() { s.Unsubscribe() }

// Notifier manages status change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Observers of every buffer
	globalObservers map[uint64]Observer

	// Observers of a single buffer
	bufferObservers map[host.BufferID]map[uint64]Observer

	nextID uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		bufferObservers: make(map[host.BufferID]map[uint64]Observer),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for changes of every buffer.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeBuffer registers an observer for changes of one buffer.
func (n *Notifier) SubscribeBuffer(bufferID host.BufferID, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.bufferObservers[bufferID] == nil {
		n.bufferObservers[bufferID] = make(map[uint64]Observer)
	}
	n.bufferObservers[bufferID][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify sends a change to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliverChange(change)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for bufferID, observers := range n.bufferObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.bufferObservers, bufferID)
		}
	}
}

func (n *Notifier) deliverChange(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.globalObservers))
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}
	for _, obs := range n.bufferObservers[change.BufferID] {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliverChange(change)
		case <-n.done:
			// Drain remaining buffered changes
			for {
				select {
				case change := <-n.buffer:
					n.deliverChange(change)
				default:
					return
				}
			}
		}
	}
}
