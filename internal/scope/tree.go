package scope

import (
	"slices"

	"github.com/orizon-lang/scopetree/internal/position"
)

// Node is one scope placed in a Tree.
type Node struct {
	scope    Scope
	parent   *Node
	children []*Node
	depth    int
}

// Scope returns the record held by the node.
func (n *Node) Scope() Scope { return n.scope }

// Span returns the offsets covered by the node's scope.
func (n *Node) Span() position.Span { return n.scope.Span() }

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the directly nested nodes in ascending offset order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Depth is zero for roots.
func (n *Node) Depth() int { return n.depth }

// Tree is the read-only nesting of one method body's scopes.
type Tree struct {
	roots        []*Node
	size         int
	methodLength uint32
	hasLength    bool
	stateMachine bool
}

// Roots returns the top-level nodes in ascending offset order.
func (t *Tree) Roots() []*Node { return slices.Clone(t.roots) }

// Len returns the number of scopes in the tree.
func (t *Tree) Len() int { return t.size }

// MethodLength returns the method body length the tree was bounded by, if
// one was supplied.
func (t *Tree) MethodLength() (uint32, bool) { return t.methodLength, t.hasLength }

// StateMachine reports whether the tree may hold disjoint top-level scopes.
func (t *Tree) StateMachine() bool { return t.stateMachine }

// Extent returns the union of all root spans.
func (t *Tree) Extent() position.Span {
	var s position.Span
	for _, r := range t.roots {
		s = s.Union(r.Span())
	}
	return s
}
