package sapling

import (
	"fmt"
	"slices"
)

// Resolve returns the dependency graph of c: its declared embedded
// children, in declaration order. Resolution walks every class reachable
// from c and fails with a *CyclicDependencyError if a class transitively
// declares itself.
//
// The result is cached per class. Nothing is cached unless the whole walk
// succeeds. The returned slice is shared and must not be mutated.
func (r *Registry) Resolve(c *Class) ([]Dependency, error) {
	if c == nil {
		return nil, &StructuralConstraintError{Op: "resolve", Target: "<nil>", Reason: "nil class"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := map[*Class][]Dependency{}
	if err := r.resolveLocked(c, nil, map[*Class]bool{}, pending); err != nil {
		return nil, err
	}
	for k, g := range pending {
		st := r.stateLocked(k)
		st.graph = g
		st.resolved = true
	}
	return r.stateLocked(c).graph, nil
}

// resolveLocked is the depth-first walk of Resolve. resolving holds the
// classes on the current path; path keeps them in order for the error.
func (r *Registry) resolveLocked(c *Class, path []*Class, resolving map[*Class]bool, pending map[*Class][]Dependency) error {
	if st, ok := r.classes[c]; ok && st.resolved {
		return nil
	}
	if _, ok := pending[c]; ok {
		return nil
	}
	resolving[c] = true
	path = append(path, c)

	deps := slices.Clone(c.declared())
	seen := make(map[string]bool, len(deps))
	for _, d := range deps {
		if d.Class == nil {
			return &StructuralConstraintError{
				Op:     "resolve",
				Target: c.Name(),
				Reason: fmt.Sprintf("dependency %q has no class", d.Name),
			}
		}
		if seen[d.Name] {
			return &NameCollisionError{Name: d.Name, Parent: c.Name()}
		}
		seen[d.Name] = true
		if resolving[d.Class] {
			return &CyclicDependencyError{Origin: path[0], At: d.Class, Path: slices.Clone(path)}
		}
		if err := r.resolveLocked(d.Class, path, resolving, pending); err != nil {
			return err
		}
	}

	delete(resolving, c)
	pending[c] = deps
	return nil
}

// distinctClasses returns the classes of graph without duplicates, in
// first-seen order.
func distinctClasses(graph []Dependency) []*Class {
	out := make([]*Class, 0, len(graph))
	for _, d := range graph {
		if !slices.Contains(out, d.Class) {
			out = append(out, d.Class)
		}
	}
	return out
}
