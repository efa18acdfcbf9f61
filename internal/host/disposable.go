package host

import "sync"

// Disposable releases a subscription or other scoped resource.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to Disposable. The function runs at most
// once.
func DisposableFunc(fn func()) Disposable {
	return &funcDisposable{fn: fn}
}

type funcDisposable struct {
	once sync.Once
	fn   func()
}

func (d *funcDisposable) Dispose() {
	d.once.Do(func() {
		if d.fn != nil {
			d.fn()
		}
	})
}

// CompositeDisposable releases a group of disposables together.
// The zero value is ready to use.
type CompositeDisposable struct {
	mu       sync.Mutex
	items    []Disposable
	disposed bool
}

// Add registers d. Adding to an already disposed composite disposes d
// immediately.
func (c *CompositeDisposable) Add(ds ...Disposable) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		for _, d := range ds {
			if d != nil {
				d.Dispose()
			}
		}
		return
	}
	for _, d := range ds {
		if d != nil {
			c.items = append(c.items, d)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of held disposables.
func (c *CompositeDisposable) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Disposed reports whether Dispose was called.
func (c *CompositeDisposable) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Dispose releases every held disposable in reverse registration order.
func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	items := c.items
	c.items = nil
	c.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Dispose()
	}
}
