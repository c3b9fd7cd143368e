package sapling

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/phanxgames/sapling/event"
)

// ClassEvents are the class-level notifications of one class in one
// registry. Both are emitted with [event.Event.AsyncEmit].
type ClassEvents struct {
	// Load fires after the class's OnLoad hook, before the class is
	// marked loaded. A failing listener fails the load.
	Load event.Event[*Class]

	// Unload fires at the start of an unload. All class listeners are
	// removed once the unload completes.
	Unload event.Event[*Class]
}

// classState is everything a registry knows about one class.
type classState struct {
	graph    []Dependency
	resolved bool
	loaded   bool
	unloaded bool
	events   ClassEvents
}

// Registry owns the class-scoped state of every class it has seen: the
// resolved dependency graph, the loaded/unloaded flags and the class
// events. Each class has its own entry; nothing is inherited from a base
// class. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	classes map[*Class]*classState
	names   map[string]*Class
	flight  singleflight.Group
	log     *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger of the registry and of every node it creates.
// By default the package logger ([Logger]) is used.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		classes: map[*Class]*classState{},
		names:   map[string]*Class{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return Logger()
}

// stateLocked returns the state of c, creating it on first access.
// r.mu must be held.
func (r *Registry) stateLocked(c *Class) *classState {
	st, ok := r.classes[c]
	if !ok {
		st = &classState{unloaded: true}
		r.classes[c] = st
	}
	return st
}

func (r *Registry) state(c *Class) *classState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(c)
}

// IsLoaded reports whether c has completed loading in this registry.
func (r *Registry) IsLoaded(c *Class) bool {
	if c == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(c).loaded
}

// IsUnloaded reports whether c is unloaded. A class that was never loaded
// is unloaded.
func (r *Registry) IsUnloaded(c *Class) bool {
	if c == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(c).unloaded
}

// ClassEvents returns the class-level events of c.
func (r *Registry) ClassEvents(c *Class) *ClassEvents {
	return &r.state(c).events
}

// Register adds c to the name index used by [Registry.Lookup] and
// manifests. Registering the same class twice is a no-op.
func (r *Registry) Register(classes ...*Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range classes {
		if c == nil {
			continue
		}
		if prev, ok := r.names[c.Name()]; ok && prev != c {
			return &NameCollisionError{Name: c.Name(), Parent: "registry"}
		}
		r.names[c.Name()] = c
	}
	return nil
}

// Lookup returns the registered class with the given name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.names[name]
	return c, ok
}
