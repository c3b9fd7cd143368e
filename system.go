package sapling

import (
	"context"
	"iter"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/phanxgames/sapling/event"
)

var systemIDCounter atomic.Uint64

// System tracks every node of one class inside the trees it watches. It
// collects the members already present when a root is added and follows
// ChildEnteredTree and ChildExitingTree on the root afterwards. Those
// notifications climb from embedded nodes to their owners, so nodes
// attached anywhere below the root, embedded subtrees included, are picked
// up and nodes detached are dropped.
//
// Like the trees it watches, a System is not safe for concurrent use.
type System struct {
	class     *Class
	tag       string
	items     []Node
	observed  []Node
	destroyed bool

	// Added fires when a node becomes a member.
	Added event.Event[Node]
	// Removing fires before a node stops being a member.
	Removing event.Event[Node]
	// Removed fires after a node stopped being a member.
	Removed event.Event[Node]

	// Watched fires after a root is added and its members collected.
	Watched event.Event[Node]
	// Unwatching fires before a root is removed.
	Unwatching event.Event[Node]
	// Unwatched fires after a root was removed and its members dropped.
	Unwatched event.Event[Node]
}

// NewSystem creates a system collecting instances of c and its subclasses.
func NewSystem(c *Class) *System {
	return &System{
		class: c,
		tag:   "sapling.system-" + strconv.FormatUint(systemIDCounter.Add(1), 10),
	}
}

// Class returns the class the system collects.
func (s *System) Class() *Class { return s.class }

// Items yields the current members in the order they were added.
func (s *System) Items() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := 0; i < len(s.items); i++ {
			if !yield(s.items[i]) {
				return
			}
		}
	}
}

// Len returns the number of members.
func (s *System) Len() int { return len(s.items) }

// Has reports whether n is a member.
func (s *System) Has(n Node) bool { return slices.Contains(s.items, n) }

// AddRoot collects the members of root's subtree and watches root for
// changes. Adding a watched root again is a no-op.
func (s *System) AddRoot(root Node) {
	if s.destroyed || root == nil || slices.Contains(s.observed, root) {
		return
	}
	s.collect(root)
	s.watch(root)
	s.Watched.Emit(context.Background(), root)
}

// RemoveRoot drops the members of root's subtree and stops watching root.
func (s *System) RemoveRoot(root Node) {
	if s.destroyed || root == nil || !slices.Contains(s.observed, root) {
		return
	}
	s.removeRoot(root)
}

func (s *System) removeRoot(root Node) {
	s.Unwatching.Emit(context.Background(), root)
	s.drop(root)
	s.unwatch(root)
	s.Unwatched.Emit(context.Background(), root)
}

// Destroy removes every root, as RemoveRoot does, and drops any remaining
// member. It reports whether the system was live.
func (s *System) Destroy() bool {
	if s.destroyed {
		return false
	}
	for len(s.observed) > 0 {
		s.removeRoot(s.observed[0])
	}
	for len(s.items) > 0 {
		s.remove(s.items[0])
	}
	s.Added.Clear()
	s.Removing.Clear()
	s.Removed.Clear()
	s.Watched.Clear()
	s.Unwatching.Clear()
	s.Unwatched.Clear()
	s.destroyed = true
	return true
}

func (s *System) watch(root Node) {
	if slices.Contains(s.observed, root) {
		return
	}
	ev := root.AsNode().Events()
	ev.ChildEnteredTree.On(event.Func(func(tc TreeChange) { s.collect(tc.Child) }), event.Tag(s.tag))
	ev.ChildExitingTree.On(event.Func(func(tc TreeChange) { s.drop(tc.Child) }), event.Tag(s.tag))
	s.observed = append(s.observed, root)
}

func (s *System) unwatch(root Node) {
	i := slices.Index(s.observed, root)
	if i < 0 {
		return
	}
	ev := root.AsNode().Events()
	ev.ChildEnteredTree.Off(s.tag)
	ev.ChildExitingTree.Off(s.tag)
	s.observed = slices.Delete(s.observed, i, i+1)
}

// collect adds every member of n's live subtree.
func (s *System) collect(n Node) {
	for m := range OfClass(Walk(n), s.class) {
		s.add(m)
	}
}

// drop removes every member of n's live subtree.
func (s *System) drop(n Node) {
	for m := range OfClass(Walk(n), s.class) {
		s.remove(m)
	}
}

func (s *System) add(n Node) {
	if slices.Contains(s.items, n) {
		return
	}
	s.items = append(s.items, n)
	s.Added.Emit(context.Background(), n)
}

func (s *System) remove(n Node) {
	if !slices.Contains(s.items, n) {
		return
	}
	s.Removing.Emit(context.Background(), n)
	// Removing listeners may have changed the list.
	if i := slices.Index(s.items, n); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.Removed.Emit(context.Background(), n)
	}
}
