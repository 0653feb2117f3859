package frame

import (
	"log/slog"
	"sync"
)

// registry is an ordered, goroutine-safe list of listeners.
// Dispatch always iterates a snapshot taken before the first call.
type registry[T any] struct {
	mu    sync.Mutex
	items []*entry[T]
}

type entry[T any] struct {
	fn func(T)
}

func (r *registry[T]) add(fn func(T)) func() {
	e := &entry[T]{fn: fn}

	r.mu.Lock()
	r.items = append(r.items, e)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(e) })
	}
}

func (r *registry[T]) remove(e *entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, item := range r.items {
		if item == e {
			r.items = append(r.items[:i:i], r.items[i+1:]...)
			return
		}
	}
}

func (r *registry[T]) snapshot() []*entry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entry[T], len(r.items))
	copy(out, r.items)
	return out
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// dispatch invokes every listener with v. A panicking listener is reported
// and does not stop the remaining ones.
func (r *registry[T]) dispatch(name string, v T) {
	for _, e := range r.snapshot() {
		invoke(name, e.fn, v)
	}
}

func invoke[T any](name string, fn func(T), v T) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("listener panic", "event", name, "panic", p)
		}
	}()
	fn(v)
}
