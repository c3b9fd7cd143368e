package sapling

import (
	"context"
	"strconv"
	"sync/atomic"
)

// classIDCounter hands out class ids.
var classIDCounter atomic.Uint64

// ClassHook is the signature of the class-level load and unload hooks.
type ClassHook func(ctx context.Context, r *Registry, c *Class) error

// Dependency is one entry of a class's declared tree: a named embedded
// child of the given class.
type Dependency struct {
	Name  string
	Class *Class
}

// Dep is shorthand for Dependency{Name: name, Class: class}.
func Dep(name string, class *Class) Dependency {
	return Dependency{Name: name, Class: class}
}

// ClassConfig describes a node class for NewClass.
type ClassConfig struct {
	// Name is used in error messages, paths and manifests. It defaults to
	// "class-<id>".
	Name string

	// Base is an optional base class. A class IsA its base. Tree and
	// RootOnly are inherited from the base; load state is not.
	Base *Class

	// RootOnly forbids instances of this class from being attached as a
	// dynamic child or embedded as a dependency.
	RootOnly bool

	// Tree returns the declared embedded children, in order. It must be
	// pure: it is called with no state and may be called again after a
	// failed resolution.
	Tree func() []Dependency

	// OnLoad runs once per load, after every dependency class has loaded.
	OnLoad ClassHook

	// OnUnload runs once per unload. When nil, unloading a class unloads
	// its dependency classes.
	OnUnload ClassHook
}

// Class is a node type descriptor. The pointer identifies the class; all
// mutable class-scoped state lives in a [Registry].
type Class struct {
	id       uint64
	name     string
	base     *Class
	rootOnly bool
	tree     func() []Dependency
	onLoad   ClassHook
	onUnload ClassHook
	ctor     func() Node
}

// NewClass creates a class whose instances are produced by ctor. ctor must
// return a fresh, zero-state node on every call.
func NewClass(cfg ClassConfig, ctor func() Node) *Class {
	c := &Class{
		id:       classIDCounter.Add(1),
		name:     cfg.Name,
		base:     cfg.Base,
		rootOnly: cfg.RootOnly,
		tree:     cfg.Tree,
		onLoad:   cfg.OnLoad,
		onUnload: cfg.OnUnload,
		ctor:     ctor,
	}
	if c.name == "" {
		c.name = "class-" + strconv.FormatUint(c.id, 10)
	}
	if c.base != nil {
		if c.tree == nil {
			c.tree = c.base.tree
		}
		c.rootOnly = c.rootOnly || c.base.rootOnly
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string {
	if c == nil {
		return "<nil>"
	}
	return c.name
}

// String implements [fmt.Stringer].
func (c *Class) String() string { return c.Name() }

// Base returns the base class, or nil.
func (c *Class) Base() *Class { return c.base }

// RootOnly reports whether instances of c may never be given a parent.
func (c *Class) RootOnly() bool { return c != nil && c.rootOnly }

// IsA reports whether c is other or has other as a (transitive) base.
func (c *Class) IsA(other *Class) bool {
	for k := c; k != nil; k = k.base {
		if k == other {
			return true
		}
	}
	return false
}

// declared calls the tree factory. A class without one has no dependencies.
func (c *Class) declared() []Dependency {
	if c.tree == nil {
		return nil
	}
	return c.tree()
}

// key is the singleflight key of the class.
func (c *Class) key() string {
	return strconv.FormatUint(c.id, 10)
}
