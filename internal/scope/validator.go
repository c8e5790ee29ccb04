package scope

import (
	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
)

// Validate re-checks every structural invariant of t: containment on each
// parent/child edge, siblings disjoint or co-located, no empty range
// scopes, unique local names per scope, method bounds, and a single
// top-level range unless t belongs to a state machine. It returns the first
// violation found in depth-first order.
func Validate(t *Tree) error {
	if t == nil {
		return nil
	}
	for _, r := range t.roots {
		if t.hasLength && r.Span().End > uint64(t.methodLength) {
			return scopeerrors.ExceedsMethod(r.Span(), t.methodLength)
		}
		if !t.stateMachine && r.Span() != t.roots[0].Span() {
			return scopeerrors.MultipleRoots(r.Span(), t.roots[0].Span())
		}
	}
	if err := validateSiblings(t.roots); err != nil {
		return err
	}
	for _, r := range t.roots {
		if err := validateNode(r); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node) error {
	if n.scope.IsEmpty() {
		return scopeerrors.EmptyScope(n.Span())
	}
	if err := validateNames(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if !n.Span().Contains(c.Span()) {
			return scopeerrors.NotContained(c.Span(), n.Span())
		}
	}
	if err := validateSiblings(n.children); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := validateNode(c); err != nil {
			return err
		}
	}
	return nil
}

// validateSiblings relies on siblings being sorted by start offset: it is
// then enough that each neighbouring pair is disjoint or identical.
func validateSiblings(nodes []*Node) error {
	for i := 1; i < len(nodes); i++ {
		prev, cur := nodes[i-1].Span(), nodes[i].Span()
		if cur.Start < prev.Start {
			return scopeerrors.PartialOverlap(cur, prev)
		}
		if prev != cur && prev.Overlaps(cur) {
			return scopeerrors.PartialOverlap(cur, prev)
		}
	}
	return nil
}

// Shadowing across nested scopes is allowed; a name may appear only once
// among the variables and constants of a single scope.
func validateNames(n *Node) error {
	total := len(n.scope.variables) + len(n.scope.constants)
	if total < 2 {
		return nil
	}
	seen := make(map[string]struct{}, total)
	for _, group := range [][]Local{n.scope.variables, n.scope.constants} {
		for _, l := range group {
			name := l.Name()
			if _, dup := seen[name]; dup {
				return scopeerrors.DuplicateName(name, n.Span())
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}
