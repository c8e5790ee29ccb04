package scope

import "iter"

// Visit describes one scope as seen by a debug-info writer.
type Visit struct {
	Scope Scope
	Depth int
	// Index is the pre-order position of the scope within the tree.
	Index int
	// Parent is the pre-order index of the enclosing scope, or -1.
	Parent int
}

// Writer receives the scopes of a finished tree.
type Writer interface {
	WriteScope(v Visit) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(v Visit) error

// WriteScope calls f(v).
func (f WriterFunc) WriteScope(v Visit) error { return f(v) }

// Walk hands every scope of t to w, parents before children and children
// in ascending offset order. It stops at the first error w returns. Trees
// are immutable, so concurrent and repeated walks see the same sequence.
func Walk(t *Tree, w Writer) error {
	var err error
	walk(t, func(v Visit) bool {
		err = w.WriteScope(v)
		return err == nil
	})
	return err
}

// All returns an iterator over the same sequence Walk produces.
func (t *Tree) All() iter.Seq[Visit] {
	return func(yield func(Visit) bool) {
		walk(t, yield)
	}
}

func walk(t *Tree, yield func(Visit) bool) {
	if t == nil {
		return
	}
	index := 0
	var visit func(n *Node, parent int) bool
	visit = func(n *Node, parent int) bool {
		self := index
		index++
		if !yield(Visit{Scope: n.scope, Depth: n.depth, Index: self, Parent: parent}) {
			return false
		}
		for _, c := range n.children {
			if !visit(c, self) {
				return false
			}
		}
		return true
	}
	for _, r := range t.roots {
		if !visit(r, -1) {
			return
		}
	}
}
