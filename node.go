package sapling

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/phanxgames/sapling/event"
)

// --- Node ---

// Node is implemented by every scene node type. Concrete types embed
// [NodeBase], which supplies the tree and lifecycle machinery along with
// no-op hooks, and override the hooks they need.
type Node interface {
	// AsNode returns the embedded NodeBase.
	AsNode() *NodeBase

	// OnInit runs during Init, after every embedded child has been inited
	// and before the Init event. An error aborts the init.
	OnInit(ctx context.Context) error

	// OnDestroy runs during Destroy, after the Destroy event and before
	// the children are destroyed. An error aborts the destroy.
	OnDestroy(ctx context.Context) error

	// OnReady runs once in the lifetime of the node, after every child
	// currently in its live subtree is ready.
	OnReady()
}

// TreeChange is the payload of the tree notifications: Child is the root of
// the subtree that was attached or detached and Parent is the node it was
// attached to or detached from.
type TreeChange struct {
	Child  Node
	Parent Node
}

// Events are the notifications of one node. Tree notifications are emitted
// synchronously with [event.Event.Emit]; Init, Destroy and Destroyed are
// awaited with [event.Event.AwaitEmit] and may fail the operation.
// Every listener is removed when the node is destroyed.
type Events struct {
	Init      event.Event[Node]
	Ready     event.Event[Node]
	Destroy   event.Event[Node]
	Destroyed event.Event[Node]

	// TreeEntered fires on an attached child and on each of its dynamic
	// descendants.
	TreeEntered event.Event[TreeChange]
	// TreeExiting fires like TreeEntered, before the child is detached.
	TreeExiting event.Event[TreeChange]
	// TreeExited fires like TreeEntered, after the child is detached.
	TreeExited event.Event[TreeChange]

	// ChildEnteredTree fires on the new parent and each node above it,
	// innermost first. The chain continues from an embedded node to its
	// owner.
	ChildEnteredTree event.Event[TreeChange]
	// ChildExitingTree fires like ChildEnteredTree, before the detach.
	ChildExitingTree event.Event[TreeChange]
	// ChildExitedTree fires like ChildEnteredTree, after the detach.
	ChildExitedTree event.Event[TreeChange]
}

func (e *Events) clear() {
	e.Init.Clear()
	e.Ready.Clear()
	e.Destroy.Clear()
	e.Destroyed.Clear()
	e.TreeEntered.Clear()
	e.TreeExiting.Clear()
	e.TreeExited.Clear()
	e.ChildEnteredTree.Clear()
	e.ChildExitingTree.Clear()
	e.ChildExitedTree.Clear()
}

// NodeBase implements the tree and lifecycle of a [Node]. It must be
// embedded in every node type, and nodes must be created with
// [Registry.New] or [New]; a NodeBase that was not is inert.
//
// A tree is not safe for concurrent use: drive it from one goroutine.
type NodeBase struct {
	this     Node
	class    *Class
	registry *Registry
	name     string

	// owner embedded this node; parent attached it dynamically.
	owner  Node
	parent Node

	embedded         bool
	embeddedChildren []Node
	children         []Node

	materialized bool
	inited       bool
	destroyed    bool
	ready        bool

	// re-entrancy guards for hooks and listeners
	initing    bool
	readying   bool
	destroying bool

	events Events
}

// AsNode returns the NodeBase itself.
func (n *NodeBase) AsNode() *NodeBase { return n }

// OnInit is the default no-op init hook.
func (n *NodeBase) OnInit(context.Context) error { return nil }

// OnDestroy is the default no-op destroy hook.
func (n *NodeBase) OnDestroy(context.Context) error { return nil }

// OnReady is the default no-op ready hook.
func (n *NodeBase) OnReady() {}

// String implements [fmt.Stringer] by returning the path of the node.
func (n *NodeBase) String() string {
	if n == nil {
		return "nil"
	}
	return n.Path()
}

// --- Accessors ---

// This returns the node as its concrete type, or nil if it was not created
// by a registry.
func (n *NodeBase) This() Node { return n.this }

// Class returns the class the node was created from.
func (n *NodeBase) Class() *Class { return n.class }

// Registry returns the registry that created the node.
func (n *NodeBase) Registry() *Registry { return n.registry }

// Events returns the node's notifications for subscribing listeners.
func (n *NodeBase) Events() *Events { return &n.events }

// Name returns the node name. It is unique among the dynamic children of
// its parent and, separately, among the embedded children of its owner.
func (n *NodeBase) Name() string { return n.name }

// SetName renames a node that has neither a parent nor an owner.
func (n *NodeBase) SetName(name string) error {
	if n.parent != nil || n.owner != nil {
		return &StructuralConstraintError{Op: "rename", Target: n.Path(), Reason: "node is attached"}
	}
	n.name = name
	return nil
}

// Owner returns the node that embedded this one, or nil.
func (n *NodeBase) Owner() Node { return n.owner }

// Parent returns the node this one is dynamically attached to, or nil.
func (n *NodeBase) Parent() Node { return n.parent }

// IsRoot reports whether the node has no parent.
func (n *NodeBase) IsRoot() bool { return n.parent == nil }

// Root returns the node reached by following parent links to the end.
func (n *NodeBase) Root() Node {
	cur := n.this
	for cur != nil && cur.AsNode().parent != nil {
		cur = cur.AsNode().parent
	}
	return cur
}

// IsEmbedded reports whether the node was created from its owner's
// declared tree.
func (n *NodeBase) IsEmbedded() bool { return n.embedded }

// IsInited reports whether Init completed and Destroy has not.
func (n *NodeBase) IsInited() bool { return n.inited }

// IsReady reports whether the ready signal has fired and the node has not
// been destroyed since.
func (n *NodeBase) IsReady() bool { return n.ready }

// IsDestroyed reports whether Destroy completed.
func (n *NodeBase) IsDestroyed() bool { return n.destroyed }

// IsLoaded reports whether the node's class is loaded.
func (n *NodeBase) IsLoaded() bool {
	return n.registry != nil && n.registry.IsLoaded(n.class)
}

// Path returns the slash separated names from the top of the tree to this
// node, following the parent link or, for embedded nodes, the owner link.
func (n *NodeBase) Path() string {
	var names []string
	var cur Node = n
	for cur != nil {
		cb := cur.AsNode()
		names = append(names, strings.ReplaceAll(cb.name, "/", `\/`))
		cur = cb.up()
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}

// Embedded returns the embedded child with the given name, or nil.
func (n *NodeBase) Embedded(name string) Node {
	for _, c := range n.embeddedChildren {
		if c.AsNode().name == name {
			return c
		}
	}
	return nil
}

// NumEmbedded returns the number of embedded children.
func (n *NodeBase) NumEmbedded() int { return len(n.embeddedChildren) }

// ChildByName returns the dynamic child with the given name, or nil.
func (n *NodeBase) ChildByName(name string) Node {
	if i := n.childIndex(name); i >= 0 {
		return n.children[i]
	}
	return nil
}

// NumChildren returns the number of dynamic children.
func (n *NodeBase) NumChildren() int { return len(n.children) }

// ChildAt returns the dynamic child at the given index, or nil if the index
// is out of range.
func (n *NodeBase) ChildAt(index int) Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	return n.children[index]
}

// IndexInParent returns the index of the node among its parent's dynamic
// children, or -1 if it has no parent.
func (n *NodeBase) IndexInParent() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.AsNode().children, n.this)
}

// --- Tree manipulation ---

// AddChild attaches child as a dynamic child at pos. If name is empty the
// child keeps its current name.
//
// Both nodes must be inited, child must have no parent, must not be
// embedded and must not be this node or any node above it (by parent or
// owner links), and the name must be free among the dynamic children. A child whose class is rootonly
// is always rejected.
//
// After the insert, TreeEntered fires on child and on each of its dynamic
// descendants, then ChildEnteredTree fires on this node and each node
// above it.
func (n *NodeBase) AddChild(child Node, name string, pos Position) error {
	if child == nil {
		return &StructuralConstraintError{Op: "add child", Target: n.Path(), Reason: "nil child"}
	}
	cb := child.AsNode()
	if cb.class.RootOnly() {
		return &StructuralConstraintError{
			Op:     "add child",
			Target: cb.Path(),
			Reason: fmt.Sprintf("class %s is rootonly", cb.class),
		}
	}
	if globalDebug {
		if err := debugCheckDestroyed(n, "AddChild (parent)"); err != nil {
			return err
		}
		if err := debugCheckDestroyed(cb, "AddChild (child)"); err != nil {
			return err
		}
	}
	if !n.inited {
		return &LifecycleOrderError{Op: "add child", Target: n.Path(), Reason: "parent is not inited"}
	}
	if !cb.inited {
		return &LifecycleOrderError{Op: "add child", Target: cb.Path(), Reason: "child is not inited"}
	}
	if cb.embedded {
		return &StructuralConstraintError{Op: "add child", Target: cb.Path(), Reason: "embedded nodes cannot be attached"}
	}
	if cb.parent != nil {
		return &StructuralConstraintError{Op: "add child", Target: cb.Path(), Reason: "child already has a parent"}
	}
	if isAncestor(child, n.this) {
		return &StructuralConstraintError{Op: "add child", Target: cb.Path(), Reason: "adding child would create a cycle"}
	}
	if !pos.Valid() {
		return fmt.Errorf("sapling: add child %s: %w", cb.Path(), ErrInvalidPosition)
	}
	if name == "" {
		name = cb.name
	}
	if n.childIndex(name) >= 0 {
		return &NameCollisionError{Name: name, Parent: n.Path()}
	}

	n.children = slices.Insert(n.children, pos.slot(len(n.children)), child)
	cb.parent = n.this
	cb.name = name
	if globalDebug {
		debugCheckTreeDepth(cb)
		debugCheckChildCount(n)
	}

	n.notify(child,
		func(e *Events) *event.Event[TreeChange] { return &e.TreeEntered },
		func(e *Events) *event.Event[TreeChange] { return &e.ChildEnteredTree })
	return nil
}

// RemoveChild detaches the dynamic child with the given name and returns
// it. The node must be inited. Embedded children can never be removed.
//
// TreeExiting and ChildExitingTree fire before the detach, while the old
// tree is still intact; TreeExited and ChildExitedTree fire after it.
func (n *NodeBase) RemoveChild(name string) (Node, error) {
	if globalDebug {
		if err := debugCheckDestroyed(n, "RemoveChild"); err != nil {
			return nil, err
		}
	}
	if !n.inited {
		return nil, &LifecycleOrderError{Op: "remove child", Target: n.Path(), Reason: "parent is not inited"}
	}
	i := n.childIndex(name)
	if i < 0 {
		if n.Embedded(name) != nil {
			return nil, &StructuralConstraintError{
				Op:     "remove child",
				Target: n.Path() + "/" + name,
				Reason: "embedded children cannot be removed",
			}
		}
		return nil, &StructuralConstraintError{
			Op:     "remove child",
			Target: n.Path(),
			Reason: fmt.Sprintf("no child named %q", name),
		}
	}
	child := n.children[i]
	if child.AsNode().embedded {
		return nil, &StructuralConstraintError{
			Op:     "remove child",
			Target: child.AsNode().Path(),
			Reason: "embedded children cannot be removed",
		}
	}
	n.detach(child)
	return child, nil
}

// RemoveFromParent detaches the node from its parent. It is a no-op if the
// node has no parent.
func (n *NodeBase) RemoveFromParent() error {
	if n.parent == nil {
		return nil
	}
	_, err := n.parent.AsNode().RemoveChild(n.name)
	return err
}

// MoveChild moves a dynamic child to pos among its siblings. For an
// invalid position the child stays where it was and ErrInvalidPosition is
// returned.
func (n *NodeBase) MoveChild(child Node, pos Position) error {
	i := -1
	if child != nil {
		i = slices.Index(n.children, child)
	}
	if i < 0 {
		target := "<nil>"
		if child != nil {
			target = child.AsNode().Path()
		}
		return &StructuralConstraintError{Op: "move child", Target: target, Reason: "not a child of " + n.Path()}
	}
	if globalDebug {
		if err := debugCheckDestroyed(n, "MoveChild"); err != nil {
			return err
		}
	}
	n.children = slices.Delete(n.children, i, i+1)
	if !pos.Valid() {
		n.children = slices.Insert(n.children, i, child)
		return fmt.Errorf("sapling: move child %s: %w", child.AsNode().Path(), ErrInvalidPosition)
	}
	n.children = slices.Insert(n.children, pos.slot(len(n.children)), child)
	return nil
}

// --- Helpers ---

// detach runs the exiting cascade, removes child and runs the exited
// cascade. child must be a dynamic child of n.
func (n *NodeBase) detach(child Node) {
	n.notify(child,
		func(e *Events) *event.Event[TreeChange] { return &e.TreeExiting },
		func(e *Events) *event.Event[TreeChange] { return &e.ChildExitingTree })

	// Listeners of the exiting cascade may already have moved the child.
	n.removeChildByPtr(child)
	cb := child.AsNode()
	if cb.parent == n.this {
		cb.parent = nil
	}

	n.notify(child,
		func(e *Events) *event.Event[TreeChange] { return &e.TreeExited },
		func(e *Events) *event.Event[TreeChange] { return &e.ChildExitedTree })
}

// notify emits a tree notification: self on child and its dynamic
// descendants in pre-order, then up on n and each node above it, climbing
// owner links from embedded nodes.
func (n *NodeBase) notify(child Node, self, up func(*Events) *event.Event[TreeChange]) {
	ctx := context.Background()
	tc := TreeChange{Child: child, Parent: n.this}
	self(&child.AsNode().events).Emit(ctx, tc)
	for d := range Descendants(child) {
		self(&d.AsNode().events).Emit(ctx, tc)
	}
	for a := n.this; a != nil; a = a.AsNode().up() {
		up(&a.AsNode().events).Emit(ctx, tc)
	}
}

// childIndex returns the index of the dynamic child named name, or -1.
func (n *NodeBase) childIndex(name string) int {
	return slices.IndexFunc(n.children, func(c Node) bool { return c.AsNode().name == name })
}

// up returns the parent of n, or its owner when it has no parent.
func (n *NodeBase) up() Node {
	if n.parent != nil {
		return n.parent
	}
	return n.owner
}

// isAncestor reports whether candidate is node or one of the nodes above
// it, following parent links and, for embedded nodes, owner links.
func isAncestor(candidate, node Node) bool {
	for p := node; p != nil; p = p.AsNode().up() {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing its
// parent. It nils the freed slot so the backing array does not retain it.
func (n *NodeBase) removeChildByPtr(child Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
