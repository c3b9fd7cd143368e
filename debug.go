package sapling

import (
	"fmt"
)

// globalDebug enables the extra tree checks below. Node operations have no
// handle on a shared configuration object, so the flag is package-wide.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, tree
// operations on destroyed nodes fail with ErrDestroyed, and deep trees or
// very wide nodes are reported as warnings on the [Logger].
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// debugCheckDestroyed returns an ErrDestroyed error naming the operation
// when n has been destroyed.
func debugCheckDestroyed(n *NodeBase, op string) error {
	if n.destroyed {
		return fmt.Errorf("sapling debug: %s on destroyed node %q: %w", op, n.Path(), ErrDestroyed)
	}
	return nil
}

// debugMaxTreeDepth is the parent chain length above which a warning is
// logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *NodeBase) {
	depth := 1
	for p := n.parent; p != nil; p = p.AsNode().parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("sapling: tree depth exceeds threshold",
			"node", n.Path(), "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the number of dynamic children above which a
// warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *NodeBase) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("sapling: node has too many children",
			"node", n.Path(), "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
