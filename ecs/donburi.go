package ecs

import (
	"fmt"
	"slices"

	"github.com/phanxgames/sapling"
	"github.com/phanxgames/sapling/event"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TreeEventKind identifies the tree notification behind a [TreeEvent].
type TreeEventKind uint8

const (
	// ChildEntered is published after a subtree was attached below a
	// watched root.
	ChildEntered TreeEventKind = iota
	// ChildExiting is published before a subtree is detached.
	ChildExiting
	// ChildExited is published after a subtree was detached.
	ChildExited
)

func (k TreeEventKind) String() string {
	switch k {
	case ChildEntered:
		return "entered"
	case ChildExiting:
		return "exiting"
	case ChildExited:
		return "exited"
	}
	return "unknown"
}

// TreeEvent is a tree notification observed on Root.
type TreeEvent struct {
	Kind TreeEventKind
	Root sapling.Node
	sapling.TreeChange
}

// TreeEventType is the Donburi event type for sapling tree notifications.
var TreeEventType = events.NewEventType[TreeEvent]()

// TreeBridge publishes the tree notifications of watched roots to a
// Donburi world. Attachments below embedded nodes of a root are included.
// Events are queued by Donburi and delivered by
// TreeEventType.ProcessEvents.
type TreeBridge struct {
	world   donburi.World
	tag     string
	watched []sapling.Node
}

// NewTreeBridge creates a bridge publishing into world.
func NewTreeBridge(world donburi.World) *TreeBridge {
	b := &TreeBridge{world: world}
	b.tag = fmt.Sprintf("sapling/ecs.bridge-%p", b)
	return b
}

// Watch starts forwarding notifications of root. Watching a root twice is
// a no-op.
func (b *TreeBridge) Watch(root sapling.Node) {
	if root == nil || slices.Contains(b.watched, root) {
		return
	}
	ev := root.AsNode().Events()
	ev.ChildEnteredTree.On(b.forward(root, ChildEntered), event.Tag(b.tag))
	ev.ChildExitingTree.On(b.forward(root, ChildExiting), event.Tag(b.tag))
	ev.ChildExitedTree.On(b.forward(root, ChildExited), event.Tag(b.tag))
	b.watched = append(b.watched, root)
}

// Unwatch stops forwarding notifications of root.
func (b *TreeBridge) Unwatch(root sapling.Node) {
	i := slices.Index(b.watched, root)
	if i < 0 {
		return
	}
	ev := root.AsNode().Events()
	ev.ChildEnteredTree.Off(b.tag)
	ev.ChildExitingTree.Off(b.tag)
	ev.ChildExitedTree.Off(b.tag)
	b.watched = slices.Delete(b.watched, i, i+1)
}

func (b *TreeBridge) forward(root sapling.Node, kind TreeEventKind) event.Listener[sapling.TreeChange] {
	return event.Func(func(tc sapling.TreeChange) {
		TreeEventType.Publish(b.world, TreeEvent{Kind: kind, Root: root, TreeChange: tc})
	})
}
