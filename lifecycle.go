package sapling

import (
	"context"
	"slices"
)

// notCreated is returned by lifecycle calls on a NodeBase that was not
// created by a registry.
func (n *NodeBase) notCreated(op string) error {
	return &LifecycleOrderError{Op: op, Target: n.Path(), Reason: "node was not created by a registry"}
}

// Init brings the node to the inited state. It materializes the embedded
// tree if needed, inits the embedded children in declaration order and any
// attached dynamic children, runs OnInit and awaits the Init event. A node
// with neither parent nor owner then becomes ready.
//
// Init reports whether it ran. It returns false without error when the node
// is already inited or initing, is destroyed, or its class is not loaded.
// If a hook or listener fails, the error is returned and the node stays
// uninited; children inited before the failure stay inited.
func (n *NodeBase) Init(ctx context.Context) (bool, error) {
	if n.this == nil {
		return false, n.notCreated("init")
	}
	if n.inited || n.initing || n.destroyed || !n.IsLoaded() {
		return false, nil
	}
	n.initing = true
	defer func() { n.initing = false }()

	if err := n.materialize(); err != nil {
		return false, err
	}
	for _, kid := range n.embeddedChildren {
		if _, err := kid.AsNode().Init(ctx); err != nil {
			return false, err
		}
	}
	for i := 0; i < len(n.children); i++ {
		if _, err := n.children[i].AsNode().Init(ctx); err != nil {
			return false, err
		}
	}

	if err := n.this.OnInit(ctx); err != nil {
		return false, &HookError{Phase: "init", Target: n.Path(), Err: err}
	}
	if err := n.events.Init.AwaitEmit(ctx, n.this); err != nil {
		return false, &HookError{Phase: "init", Target: n.Path(), Err: err}
	}

	// Hooks and listeners may have destroyed the node or unloaded its class.
	if n.inited || n.destroyed || !n.IsLoaded() {
		return false, nil
	}
	n.inited = true
	n.registry.logger().Debug("sapling: node inited", "node", n.Path(), "class", n.class.Name())

	if n.parent == nil && n.owner == nil {
		n.Ready()
	}
	return true, nil
}

// Ready fires the one-time ready signal. Embedded children, then dynamic
// children, are readied depth-first before OnReady runs on this node, so
// readiness flows bottom-up. The node is marked ready before the Ready
// event, so listeners observe IsReady() == true.
//
// Ready reports whether it ran. It returns false when the node is already
// ready, not inited, destroyed, or its class is not loaded.
func (n *NodeBase) Ready() bool {
	if n.this == nil || n.ready || n.readying || !n.inited || n.destroyed || !n.IsLoaded() {
		return false
	}
	n.readying = true
	defer func() { n.readying = false }()

	for _, kid := range n.embeddedChildren {
		kid.AsNode().Ready()
	}
	for i := 0; i < len(n.children); i++ {
		n.children[i].AsNode().Ready()
	}

	n.this.OnReady()
	n.ready = true
	n.registry.logger().Debug("sapling: node ready", "node", n.Path())
	n.events.Ready.Emit(context.Background(), n.this)
	return true
}

// Destroy tears the node down for good. The Destroy event is awaited and
// OnDestroy runs while the node is still in its tree. A node attached to a
// live parent is then detached (with the exiting and exited
// notifications), every dynamic child and then every embedded child is
// destroyed, the node is marked destroyed and no longer ready, the
// Destroyed event is awaited and all of the node's listeners are removed.
//
// Destroy reports whether it ran. It returns false without error when the
// node is not inited, is destroyed, or is already being destroyed. If a
// hook or a child fails, the error is returned and the node stays inited so
// that Destroy can be retried. A failing Destroy listener or OnDestroy
// leaves the node attached; children destroyed before a failure stay
// destroyed.
func (n *NodeBase) Destroy(ctx context.Context) (bool, error) {
	if n.this == nil {
		return false, n.notCreated("destroy")
	}
	if !n.inited || n.destroyed || n.destroying {
		return false, nil
	}
	n.destroying = true
	defer func() { n.destroying = false }()

	if err := n.events.Destroy.AwaitEmit(ctx, n.this); err != nil {
		return false, &HookError{Phase: "destroy", Target: n.Path(), Err: err}
	}
	if err := n.this.OnDestroy(ctx); err != nil {
		return false, &HookError{Phase: "destroy", Target: n.Path(), Err: err}
	}

	if p := n.parent; p != nil && !p.AsNode().destroying {
		p.AsNode().detach(n.this)
	}

	kids := slices.Clone(n.children)
	for _, kid := range kids {
		if _, err := kid.AsNode().Destroy(ctx); err != nil {
			return false, err
		}
	}
	for _, kid := range kids {
		if kb := kid.AsNode(); kb.parent == n.this {
			kb.parent = nil
		}
	}
	n.children = nil

	for _, kid := range n.embeddedChildren {
		if _, err := kid.AsNode().Destroy(ctx); err != nil {
			return false, err
		}
	}

	if n.destroyed || !n.inited {
		return false, nil
	}
	n.destroyed = true
	n.inited = false
	n.ready = false
	n.registry.logger().Debug("sapling: node destroyed", "node", n.Path())

	err := n.events.Destroyed.AwaitEmit(ctx, n.this)
	n.events.clear()
	if err != nil {
		return true, &HookError{Phase: "destroyed", Target: n.Path(), Err: err}
	}
	return true, nil
}
