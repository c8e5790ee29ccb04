package scope

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog"

	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMethodLength bounds every scope by the method body length.
func WithMethodLength(n uint32) BuilderOption {
	return func(b *Builder) {
		b.methodLength = n
		b.hasLength = true
	}
}

// WithStateMachine allows disjoint top-level scopes, as produced for
// rewritten iterator and async bodies.
func WithStateMachine() BuilderOption {
	return func(b *Builder) {
		b.stateMachine = true
	}
}

// WithLogger sets the logger used to report dropped records.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// Builder arranges a method's flat scope list into a Tree. It keeps no
// state between calls to Build.
type Builder struct {
	methodLength uint32
	hasLength    bool
	stateMachine bool
	logger       zerolog.Logger
}

// NewBuilder returns a Builder configured by opts.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build nests records by containment and validates the result. Empty range
// records are dropped; any record that partially overlaps another fails
// the whole method with a structural-defect error.
func (b *Builder) Build(records []Scope) (*Tree, error) {
	candidates := make([]Scope, 0, len(records))
	for i, r := range records {
		if r.IsEmpty() {
			b.logger.Debug().
				Int("index", i).
				Uint32("offset", r.Offset()).
				Msg("dropping zero-length scope")
			continue
		}
		candidates = append(candidates, r)
	}

	// Outer scopes sort before inner scopes sharing their start offset.
	slices.SortStableFunc(candidates, func(x, y Scope) int {
		sx, sy := x.Span(), y.Span()
		if c := cmp.Compare(sx.Start, sy.Start); c != 0 {
			return c
		}
		return cmp.Compare(sy.End, sx.End)
	})

	t := &Tree{
		methodLength: b.methodLength,
		hasLength:    b.hasLength,
		stateMachine: b.stateMachine,
	}

	var stack []*Node
	for _, c := range candidates {
		span := c.Span()
		if b.hasLength && span.End > uint64(b.methodLength) {
			return nil, scopeerrors.ExceedsMethod(span, b.methodLength)
		}

		for len(stack) > 0 && stack[len(stack)-1].Span().End <= span.Start {
			stack = stack[:len(stack)-1]
		}
		// Identical spans are co-located siblings, not parent and child.
		if len(stack) > 0 && stack[len(stack)-1].Span() == span {
			stack = stack[:len(stack)-1]
		}

		n := &Node{scope: c}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if !parent.Span().Contains(span) {
				return nil, scopeerrors.PartialOverlap(span, parent.Span())
			}
			n.parent = parent
			n.depth = parent.depth + 1
			parent.children = append(parent.children, n)
		} else {
			if len(t.roots) > 0 && !b.stateMachine && t.roots[0].Span() != span {
				return nil, scopeerrors.MultipleRoots(span, t.roots[0].Span())
			}
			t.roots = append(t.roots, n)
		}
		stack = append(stack, n)
		t.size++
	}

	if err := Validate(t); err != nil {
		return nil, err
	}

	b.logger.Debug().
		Int("records", len(records)).
		Int("scopes", t.size).
		Int("roots", len(t.roots)).
		Msg("built scope tree")
	return t, nil
}
