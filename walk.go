package sapling

import "iter"

// The traversal functions return lazy sequences. Each step reads the live
// tree, so a sequence can be ranged over again after the tree changes,
// abandoned early with break, or consumed one element at a time with
// [iter.Pull]. None of them modify the tree.

// Owners yields the owner of n, the owner's owner and so on.
func Owners(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for o := n.AsNode().owner; o != nil; o = o.AsNode().owner {
			if !yield(o) {
				return
			}
		}
	}
}

// Parents yields the parent of n, the parent's parent and so on up to the
// root.
func Parents(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.AsNode().parent; p != nil; p = p.AsNode().parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Children yields the dynamic children of n in order.
func Children(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		nb := n.AsNode()
		for i := 0; i < len(nb.children); i++ {
			if !yield(nb.children[i]) {
				return
			}
		}
	}
}

// Descendants yields the dynamic descendants of n in pre-order: each child,
// then its own descendants. Embedded children are not included.
func Descendants(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walkDescendants(n, yield)
	}
}

func walkDescendants(n Node, yield func(Node) bool) bool {
	nb := n.AsNode()
	for i := 0; i < len(nb.children); i++ {
		kid := nb.children[i]
		if !yield(kid) || !walkDescendants(kid, yield) {
			return false
		}
	}
	return true
}

// EmbeddedChildren yields the embedded children of n in declaration order.
func EmbeddedChildren(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		nb := n.AsNode()
		for i := 0; i < len(nb.embeddedChildren); i++ {
			if !yield(nb.embeddedChildren[i]) {
				return
			}
		}
	}
}

// Walk yields n and its whole live subtree in pre-order: a node, then its
// embedded subtrees, then its dynamic subtrees.
func Walk(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(n, yield)
	}
}

func walk(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	nb := n.AsNode()
	for i := 0; i < len(nb.embeddedChildren); i++ {
		if !walk(nb.embeddedChildren[i], yield) {
			return false
		}
	}
	for i := 0; i < len(nb.children); i++ {
		if !walk(nb.children[i], yield) {
			return false
		}
	}
	return true
}

// OfClass yields the elements of seq whose class is c or has c as a base.
func OfClass(seq iter.Seq[Node], c *Class) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for n := range seq {
			if n.AsNode().class.IsA(c) && !yield(n) {
				return
			}
		}
	}
}

// OfType yields the elements of seq that are of Go type T.
func OfType[T Node](seq iter.Seq[Node]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := range seq {
			if t, ok := n.(T); ok && !yield(t) {
				return
			}
		}
	}
}
