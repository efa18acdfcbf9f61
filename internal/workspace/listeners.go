package workspace

import (
	"sync"

	"github.com/dshills/edconf/internal/host"
)

// listeners is an ordered set of callbacks. Callbacks are invoked outside
// the lock so they may add or remove listeners.
type listeners[F any] struct {
	mu   sync.Mutex
	next uint64
	ids  []uint64
	fns  map[uint64]F
}

func (l *listeners[F]) add(fn F) host.Disposable {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[uint64]F)
	}
	id := l.next
	l.next++
	l.ids = append(l.ids, id)
	l.fns[id] = fn
	return host.DisposableFunc(func() { l.remove(id) })
}

func (l *listeners[F]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

func (l *listeners[F]) snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]F, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.fns[id])
	}
	return out
}

func (l *listeners[F]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

func (l *listeners[F]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = nil
	l.fns = nil
}
