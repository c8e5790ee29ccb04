package debug

import (
	"github.com/orizon-lang/scopetree/internal/scope"
)

// Binding is a local visible at some instruction offset.
type Binding struct {
	Local    scope.Local
	Constant bool
	// Scope is the innermost scope declaring the local.
	Scope scope.Scope
}

// OffsetMap resolves instruction offsets against a finished scope tree the
// way a debugger does when it evaluates locals at a stopped offset.
type OffsetMap struct {
	tree *scope.Tree
}

// BuildOffsetMap builds an OffsetMap over tree.
func BuildOffsetMap(tree *scope.Tree) *OffsetMap {
	return &OffsetMap{tree: tree}
}

// ScopesAt returns the scopes covering offset, innermost first. Co-located
// scopes are returned in walk order.
func (m *OffsetMap) ScopesAt(offset uint32) []scope.Scope {
	var chain []scope.Scope
	var descend func(nodes []*scope.Node)
	descend = func(nodes []*scope.Node) {
		for _, n := range nodes {
			if n.Span().Start > uint64(offset) {
				// siblings are sorted; nothing later can cover offset
				return
			}
			if !n.Span().ContainsOffset(offset) {
				continue
			}
			chain = append(chain, n.Scope())
			descend(n.Children())
		}
	}
	if m.tree != nil {
		descend(m.tree.Roots())
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Resolve returns the locals visible at offset. Inner declarations shadow
// outer ones with the same name. ok is false when no scope covers offset.
func (m *OffsetMap) Resolve(offset uint32) (bindings []Binding, ok bool) {
	chain := m.ScopesAt(offset)
	if len(chain) == 0 {
		return nil, false
	}
	seen := make(map[string]struct{})
	add := func(s scope.Scope, locals []scope.Local, constant bool) {
		for _, l := range locals {
			if _, shadowed := seen[l.Name()]; shadowed {
				continue
			}
			seen[l.Name()] = struct{}{}
			bindings = append(bindings, Binding{Local: l, Constant: constant, Scope: s})
		}
	}
	for _, s := range chain {
		add(s, s.Variables(), false)
		add(s, s.Constants(), true)
	}
	return bindings, true
}
