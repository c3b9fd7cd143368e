package sapling

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Load prepares c and every class it depends on. It resolves the dependency
// graph, loads each distinct dependency class once (concurrently), runs the
// class's OnLoad hook and emits its Load event, and only then marks the
// class loaded.
//
// Load reports whether this call performed the load. Loading an already
// loaded class returns false. Concurrent calls for the same class share a
// single run, which uses the context of the first caller; exactly one of
// them observes true.
func (r *Registry) Load(ctx context.Context, c *Class) (bool, error) {
	if c == nil {
		return false, &StructuralConstraintError{Op: "load", Target: "<nil>", Reason: "nil class"}
	}
	if r.IsLoaded(c) {
		return false, nil
	}
	ran := false
	v, err, _ := r.flight.Do("load:"+c.key(), func() (any, error) {
		ran = true
		return r.load(ctx, c)
	})
	if err != nil {
		return false, err
	}
	return ran && v.(bool), nil
}

func (r *Registry) load(ctx context.Context, c *Class) (bool, error) {
	if r.IsLoaded(c) {
		return false, nil
	}
	graph, err := r.Resolve(c)
	if err != nil {
		return false, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range distinctClasses(graph) {
		g.Go(func() error {
			_, err := r.Load(gctx, dep)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	if c.onLoad != nil {
		if err := c.onLoad(ctx, r, c); err != nil {
			return false, &HookError{Phase: "load", Target: c.Name(), Err: err}
		}
	}
	st := r.state(c)
	if err := st.events.Load.AsyncEmit(ctx, c); err != nil {
		return false, &HookError{Phase: "load", Target: c.Name(), Err: err}
	}

	r.mu.Lock()
	if st.loaded {
		r.mu.Unlock()
		return false, nil
	}
	st.loaded = true
	st.unloaded = false
	r.mu.Unlock()

	r.logger().Debug("sapling: class loaded", "class", c.Name(), "dependencies", len(graph))
	return true, nil
}

// Unload reverses Load. It emits the Unload event, runs the OnUnload hook
// (by default unloading the dependency classes), removes every class-level
// listener and marks the class unloaded. Unloading a class that is not
// loaded returns false.
//
// Instances that already exist keep working, but cannot be inited, readied
// or constructed until the class is loaded again.
func (r *Registry) Unload(ctx context.Context, c *Class) (bool, error) {
	if c == nil || !r.IsLoaded(c) {
		return false, nil
	}
	ran := false
	v, err, _ := r.flight.Do("unload:"+c.key(), func() (any, error) {
		ran = true
		return r.unload(ctx, c)
	})
	if err != nil {
		return false, err
	}
	return ran && v.(bool), nil
}

func (r *Registry) unload(ctx context.Context, c *Class) (bool, error) {
	if !r.IsLoaded(c) {
		return false, nil
	}
	st := r.state(c)
	if err := st.events.Unload.AsyncEmit(ctx, c); err != nil {
		return false, &HookError{Phase: "unload", Target: c.Name(), Err: err}
	}

	hook := c.onUnload
	if hook == nil {
		hook = func(ctx context.Context, r *Registry, c *Class) error {
			return r.UnloadDependencies(ctx, c)
		}
	}
	if err := hook(ctx, r, c); err != nil {
		return false, &HookError{Phase: "unload", Target: c.Name(), Err: err}
	}

	st.events.Load.Clear()
	st.events.Unload.Clear()

	r.mu.Lock()
	if !st.loaded {
		r.mu.Unlock()
		return false, nil
	}
	st.loaded = false
	st.unloaded = true
	r.mu.Unlock()

	r.logger().Debug("sapling: class unloaded", "class", c.Name())
	return true, nil
}

// UnloadDependencies unloads every distinct dependency class of c. It is the
// default OnUnload behavior and can be called from custom OnUnload hooks.
func (r *Registry) UnloadDependencies(ctx context.Context, c *Class) error {
	r.mu.Lock()
	graph := r.stateLocked(c).graph
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range distinctClasses(graph) {
		g.Go(func() error {
			_, err := r.Unload(gctx, dep)
			return err
		})
	}
	return g.Wait()
}
