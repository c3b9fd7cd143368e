package sapling

import (
	"fmt"
)

// New constructs an instance of c together with its embedded subtree.
// The class must be loaded; otherwise a *LifecycleOrderError is returned.
// Every declared dependency becomes an embedded child owned by the new
// node and named after its declaration. A rootonly dependency fails the
// construction with a *StructuralConstraintError before any child is
// created.
func (r *Registry) New(c *Class) (Node, error) {
	if c == nil {
		return nil, &StructuralConstraintError{Op: "new", Target: "<nil>", Reason: "nil class"}
	}
	if !r.IsLoaded(c) {
		return nil, &LifecycleOrderError{Op: "new", Target: c.Name(), Reason: "class is not loaded"}
	}
	var n Node
	if c.ctor != nil {
		n = c.ctor()
	}
	if n == nil {
		n = &NodeBase{}
	}
	nb := n.AsNode()
	nb.this = n
	nb.class = c
	nb.registry = r
	nb.name = c.Name()
	if err := nb.materialize(); err != nil {
		return nil, err
	}
	return n, nil
}

// New is a typed wrapper around [Registry.New].
func New[T Node](r *Registry, c *Class) (T, error) {
	var zero T
	n, err := r.New(c)
	if err != nil {
		return zero, err
	}
	t, ok := n.(T)
	if !ok {
		return zero, fmt.Errorf("sapling: class %s constructs %T, not %T", c, n, zero)
	}
	return t, nil
}

// materialize creates the embedded children of n from its class's
// dependency graph. It runs at most once per node and commits nothing
// unless every child was created.
func (n *NodeBase) materialize() error {
	if n.materialized {
		return nil
	}
	graph, err := n.registry.Resolve(n.class)
	if err != nil {
		return err
	}
	for _, d := range graph {
		if d.Class.RootOnly() {
			return &StructuralConstraintError{
				Op:     "embed",
				Target: n.Path() + "/" + d.Name,
				Reason: fmt.Sprintf("class %s is rootonly", d.Class),
			}
		}
	}

	kids := make([]Node, 0, len(graph))
	for _, d := range graph {
		kid, err := n.registry.New(d.Class)
		if err != nil {
			return err
		}
		kb := kid.AsNode()
		kb.owner = n.this
		kb.embedded = true
		kb.name = d.Name
		kids = append(kids, kid)
	}
	n.embeddedChildren = kids
	n.materialized = true
	return nil
}
