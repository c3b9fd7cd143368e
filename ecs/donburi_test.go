package ecs

import (
	"context"
	"testing"

	"github.com/phanxgames/sapling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func newRoot(t *testing.T, reg *sapling.Registry, c *sapling.Class, name string) sapling.Node {
	t.Helper()
	ctx := context.Background()
	_, err := reg.Load(ctx, c)
	require.NoError(t, err)
	n, err := reg.New(c)
	require.NoError(t, err)
	require.NoError(t, n.AsNode().SetName(name))
	_, err = n.AsNode().Init(ctx)
	require.NoError(t, err)
	return n
}

func TestNewTreeBridge(t *testing.T) {
	b := NewTreeBridge(donburi.NewWorld())
	require.NotNil(t, b)
}

func TestTreeBridge_PublishesTreeChanges(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewTreeBridge(world)
	reg := sapling.NewRegistry()
	c := sapling.NewClass(sapling.ClassConfig{Name: "box"}, nil)

	root := newRoot(t, reg, c, "root")
	kid := newRoot(t, reg, c, "kid")
	bridge.Watch(root)
	bridge.Watch(root)

	var received []TreeEvent
	TreeEventType.Subscribe(world, func(w donburi.World, e TreeEvent) {
		received = append(received, e)
	})

	require.NoError(t, root.AsNode().AddChild(kid, "", sapling.End))
	_, err := root.AsNode().RemoveChild("kid")
	require.NoError(t, err)

	// Events are queued until processed.
	assert.Empty(t, received)
	TreeEventType.ProcessEvents(world)

	require.Len(t, received, 3)
	assert.Equal(t, []TreeEventKind{ChildEntered, ChildExiting, ChildExited},
		[]TreeEventKind{received[0].Kind, received[1].Kind, received[2].Kind})
	for _, e := range received {
		assert.Same(t, root, e.Root)
		assert.Same(t, kid, e.Child)
		assert.Same(t, root, e.Parent)
	}
}

func TestTreeBridge_AttachUnderEmbedded(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewTreeBridge(world)
	reg := sapling.NewRegistry()
	slot := sapling.NewClass(sapling.ClassConfig{Name: "slot"}, nil)
	holder := sapling.NewClass(sapling.ClassConfig{
		Name: "holder",
		Tree: func() []sapling.Dependency { return []sapling.Dependency{sapling.Dep("slot", slot)} },
	}, nil)

	root := newRoot(t, reg, holder, "root")
	kid := newRoot(t, reg, slot, "kid")
	bridge.Watch(root)

	var received []TreeEvent
	TreeEventType.Subscribe(world, func(w donburi.World, e TreeEvent) {
		received = append(received, e)
	})

	embedded := root.AsNode().Embedded("slot")
	require.NoError(t, embedded.AsNode().AddChild(kid, "", sapling.End))
	TreeEventType.ProcessEvents(world)

	require.Len(t, received, 1)
	assert.Equal(t, ChildEntered, received[0].Kind)
	assert.Same(t, embedded, received[0].Parent)
	assert.Same(t, root, received[0].Root)
}

func TestTreeBridge_Unwatch(t *testing.T) {
	world := donburi.NewWorld()
	bridge := NewTreeBridge(world)
	reg := sapling.NewRegistry()
	c := sapling.NewClass(sapling.ClassConfig{Name: "box"}, nil)

	root := newRoot(t, reg, c, "root")
	kid := newRoot(t, reg, c, "kid")
	bridge.Watch(root)
	bridge.Unwatch(root)

	count := 0
	TreeEventType.Subscribe(world, func(w donburi.World, e TreeEvent) { count++ })

	require.NoError(t, root.AsNode().AddChild(kid, "", sapling.End))
	TreeEventType.ProcessEvents(world)
	assert.Zero(t, count)
	assert.Zero(t, root.AsNode().Events().ChildEnteredTree.Len())
}

func TestTreeEventKind_String(t *testing.T) {
	assert.Equal(t, "entered", ChildEntered.String())
	assert.Equal(t, "exiting", ChildExiting.String())
	assert.Equal(t, "exited", ChildExited.String())
	assert.Equal(t, "unknown", TreeEventKind(9).String())
}
