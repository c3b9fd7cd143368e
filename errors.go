package sapling

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below wrap one of these where it applies, so
// callers can match either the category with errors.Is or the details with
// errors.As.
var (
	// ErrInvalidPosition is returned by MoveChild and ParsePosition for a
	// position that is neither Start, End nor an index.
	ErrInvalidPosition = errors.New("sapling: invalid position")

	// ErrDestroyed is returned in debug mode when a destroyed node is used in
	// a tree operation.
	ErrDestroyed = errors.New("sapling: node is destroyed")

	// ErrUnknownClass is returned when a manifest names a class that has not
	// been registered.
	ErrUnknownClass = errors.New("sapling: unknown class")
)

// LifecycleOrderError reports an operation attempted out of order, such as
// constructing a node before its class is loaded or attaching children to a
// node that is not inited.
type LifecycleOrderError struct {
	Op     string
	Target string
	Reason string
}

func (e *LifecycleOrderError) Error() string {
	return fmt.Sprintf("sapling: %s %s: %s", e.Op, e.Target, e.Reason)
}

// CyclicDependencyError reports a class that transitively declares itself as
// a dependency. Path lists the classes from Origin to the class that closed
// the cycle.
type CyclicDependencyError struct {
	Origin *Class
	At     *Class
	Path   []*Class
}

func (e *CyclicDependencyError) Error() string {
	names := make([]string, 0, len(e.Path)+1)
	for _, c := range e.Path {
		names = append(names, c.Name())
	}
	names = append(names, e.At.Name())
	return fmt.Sprintf("sapling: cyclic dependency %q", strings.Join(names, " -> "))
}

// NameCollisionError reports a duplicate name among siblings.
type NameCollisionError struct {
	Name   string
	Parent string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("sapling: name %q is already in use in %s", e.Name, e.Parent)
}

// StructuralConstraintError reports a tree operation that would break a
// structural rule: a rootonly class given a parent, an embedded child
// removed dynamically, or a node moved that is not a child.
type StructuralConstraintError struct {
	Op     string
	Target string
	Reason string
	Err    error
}

func (e *StructuralConstraintError) Error() string {
	return fmt.Sprintf("sapling: %s %s: %s", e.Op, e.Target, e.Reason)
}

func (e *StructuralConstraintError) Unwrap() error { return e.Err }

// HookError wraps an error returned by a class or node hook. Flags of the
// failed phase are left unchanged, so the operation can be retried.
type HookError struct {
	Phase  string
	Target string
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("sapling: %s hook of %s: %v", e.Phase, e.Target, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
