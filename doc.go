// Package sapling is a scene tree lifecycle engine: classes declare the
// fixed subtree every instance is born with, a registry loads classes and
// their dependencies once, and nodes move through init, ready and destroy
// while being attached to and detached from a live tree.
//
// # Quick start
//
// Declare classes with [NewClass]. A class's Tree function lists its
// dependencies; each becomes an embedded child of every instance:
//
//	type Player struct{ sapling.NodeBase }
//
//	sprite := sapling.NewClass(sapling.ClassConfig{Name: "sprite"}, nil)
//	player := sapling.NewClass(sapling.ClassConfig{
//		Name: "player",
//		Tree: func() []sapling.Dependency {
//			return []sapling.Dependency{sapling.Dep("body", sprite)}
//		},
//	}, func() sapling.Node { return &Player{} })
//
// Load the class, create an instance and init it:
//
//	reg := sapling.NewRegistry()
//	if _, err := reg.Load(ctx, player); err != nil { ... }
//	p, err := sapling.New[*Player](reg, player)
//	if _, err := p.Init(ctx); err != nil { ... }
//
// A node with neither parent nor owner becomes ready as soon as it is
// inited. Embedded nodes become ready with their owner.
//
// # Classes and loading
//
// [Registry.Load] resolves the dependency graph of a class (rejecting
// cycles and duplicate names), loads every dependency concurrently, runs
// the class's OnLoad hook and fires [ClassEvents.Load]. Concurrent loads of
// the same class share one run. [Registry.Unload] is the reverse.
//
// # Tree
//
// Inited nodes are attached with [NodeBase.AddChild] at a [Position]
// ([Start], [End] or [At]) and detached with [NodeBase.RemoveChild].
// Attaching fires TreeEntered on the subtree and ChildEnteredTree on the
// new parent and its ancestors; detaching fires the matching exiting and
// exited notifications. Embedded children are never attached or removed.
//
// [Walk], [Descendants], [Parents] and the other traversal functions
// return lazy [iter.Seq] sequences over the live tree.
//
// # Errors
//
// Operations return typed errors: [*LifecycleOrderError],
// [*CyclicDependencyError], [*NameCollisionError],
// [*StructuralConstraintError] and [*HookError]. Use [errors.As] to
// inspect them.
//
// # Game loop
//
// [Run] hosts a root class in an [Ebitengine] window. Nodes implementing
// [Updater] and [Drawer] are ticked and drawn in tree order.
//
// # Logging
//
// sapling is silent by default. Pass a [log/slog.Logger] to [SetLogger] or
// [WithLogger] to see lifecycle transitions at debug level and dropped
// listener errors at warn level.
//
// [Ebitengine]: https://ebitengine.org
package sapling
