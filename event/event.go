// Package event provides the ordered, tagged publish/subscribe primitive used
// by sapling to announce lifecycle and tree transitions.
//
// An [Event] holds a priority-ordered list of listeners. It can be emitted in
// three modes:
//
//   - [Event.Emit] calls every listener synchronously and drops their errors.
//   - [Event.AwaitEmit] calls listeners one after another and stops at the
//     first error.
//   - [Event.AsyncEmit] calls all listeners concurrently and waits for them.
//
// An Event is safe for concurrent use. Listeners may register or remove other
// listeners while the event is being emitted; such changes take effect on the
// next emission.
package event

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Listener is a function subscribed to an [Event].
type Listener[T any] func(ctx context.Context, v T) error

// Func adapts a plain callback that cannot fail into a [Listener].
func Func[T any](fn func(v T)) Listener[T] {
	return func(_ context.Context, v T) error {
		fn(v)
		return nil
	}
}

// ListenerID identifies a registered listener for [Event.Remove].
type ListenerID uint64

type entry[T any] struct {
	id       ListenerID
	fn       Listener[T]
	priority int
	tag      string
	once     bool
}

// Option configures a listener registration.
type Option func(*options)

type options struct {
	priority int
	tag      string
	once     bool
}

// Priority sets the listener priority. Higher priorities run first; equal
// priorities run in registration order. The default is 0.
func Priority(p int) Option {
	return func(o *options) { o.priority = p }
}

// Tag labels the listener so that it can be removed with [Event.Off].
func Tag(tag string) Option {
	return func(o *options) { o.tag = tag }
}

// Once removes the listener after its first call.
func Once() Option {
	return func(o *options) { o.once = true }
}

// Event is a list of listeners receiving values of type T.
// The zero value is ready to use.
type Event[T any] struct {
	mu      sync.Mutex
	entries []*entry[T]
	nextID  ListenerID
}

// On registers fn and returns its id.
func (e *Event[T]) On(fn Listener[T], opts ...Option) ListenerID {
	if fn == nil {
		return 0
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	en := &entry[T]{id: e.nextID, fn: fn, priority: o.priority, tag: o.tag, once: o.once}
	// Insert after every entry with priority >= ours to keep registration order.
	i := len(e.entries)
	for i > 0 && e.entries[i-1].priority < en.priority {
		i--
	}
	e.entries = slices.Insert(e.entries, i, en)
	return en.id
}

// Off removes every listener registered with the given tag.
// It returns the number of listeners removed.
func (e *Event[T]) Off(tag string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.entries)
	e.entries = slices.DeleteFunc(e.entries, func(en *entry[T]) bool { return en.tag == tag })
	return n - len(e.entries)
}

// Remove removes the listener with the given id. It reports whether the
// listener was found.
func (e *Event[T]) Remove(id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.entries)
	e.entries = slices.DeleteFunc(e.entries, func(en *entry[T]) bool { return en.id == id })
	return n != len(e.entries)
}

// Clear removes all listeners.
func (e *Event[T]) Clear() {
	e.mu.Lock()
	e.entries = nil
	e.mu.Unlock()
}

// Len returns the number of registered listeners.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// snapshot returns the current listeners and drops once-listeners from the
// list, since they are about to be called.
func (e *Event[T]) snapshot() []*entry[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.entries) == 0 {
		return nil
	}
	out := slices.Clone(e.entries)
	e.entries = slices.DeleteFunc(e.entries, func(en *entry[T]) bool { return en.once })
	return out
}

// Emit calls every listener in priority order. Listener errors are logged
// and otherwise ignored.
func (e *Event[T]) Emit(ctx context.Context, v T) {
	for _, en := range e.snapshot() {
		if err := en.fn(ctx, v); err != nil {
			logger().Warn("event: listener error dropped", "listener", en.id, "tag", en.tag, "err", err)
		}
	}
}

// AwaitEmit calls every listener in priority order, waiting for each one
// before calling the next. It returns the first error; the remaining
// listeners are not called.
func (e *Event[T]) AwaitEmit(ctx context.Context, v T) error {
	for _, en := range e.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := en.fn(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// AsyncEmit calls all listeners concurrently and waits for them to finish.
// The context passed to listeners is canceled as soon as one of them fails,
// and the first error is returned.
func (e *Event[T]) AsyncEmit(ctx context.Context, v T) error {
	entries := e.snapshot()
	switch len(entries) {
	case 0:
		return nil
	case 1:
		return entries[0].fn(ctx, v)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, en := range entries {
		g.Go(func() error { return en.fn(gctx, v) })
	}
	return g.Wait()
}
