// Package ecs provides ECS adapters for sapling scene trees.
//
// The primary adapter is [NewTreeBridge], which forwards the tree
// notifications of watched roots into a [Donburi] world as typed events.
// Subscribe to [TreeEventType] in your ECS systems to receive them.
//
// Usage:
//
//	bridge := ecs.NewTreeBridge(world)
//	bridge.Watch(root)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
