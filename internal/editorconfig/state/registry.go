package state

import (
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// Registry associates buffers with their BufferConfigState.
type Registry struct {
	mu     sync.RWMutex
	states map[host.BufferID]*BufferConfigState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[host.BufferID]*BufferConfigState)}
}

// Ensure returns the state of buf, creating it on first observation.
// created is true only for the call that created it.
func (r *Registry) Ensure(buf host.Buffer) (st *BufferConfigState, created bool) {
	id := buf.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.states[id]; ok {
		return st, false
	}
	st = newBufferConfigState(buf)
	r.states[id] = st
	return st, true
}

// Get returns the state of a buffer, if it was observed.
func (r *Registry) Get(id host.BufferID) (*BufferConfigState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[id]
	return st, ok
}

// Remove forgets a buffer and releases its subscriptions.
func (r *Registry) Remove(id host.BufferID) {
	r.mu.Lock()
	st, ok := r.states[id]
	delete(r.states, id)
	r.mu.Unlock()

	if ok {
		st.subs.Dispose()
	}
}

// Len returns the number of tracked buffers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// Each calls fn for every tracked state. fn may call back into the registry.
func (r *Registry) Each(fn func(*BufferConfigState)) {
	r.mu.RLock()
	states := make([]*BufferConfigState, 0, len(r.states))
	for _, st := range r.states {
		states = append(states, st)
	}
	r.mu.RUnlock()

	for _, st := range states {
		fn(st)
	}
}

// Clear releases and forgets every state.
func (r *Registry) Clear() {
	r.mu.Lock()
	states := r.states
	r.states = make(map[host.BufferID]*BufferConfigState)
	r.mu.Unlock()

	for _, st := range states {
		st.subs.Dispose()
	}
}
