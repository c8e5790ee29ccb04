// Package scope models the lexical scopes of a compiled method body: which
// locals and local constants are visible over which instruction offsets.
//
// Records are collected from the front end as a flat list, arranged into a
// strictly nested Tree by a Builder, checked by Validate, and handed to a
// debug-info writer through Walk.
package scope

import (
	"fmt"
	"slices"

	scopeerrors "github.com/orizon-lang/scopetree/internal/errors"
	"github.com/orizon-lang/scopetree/internal/position"
)

// Kind distinguishes ordinary ranges from single-offset scopes.
type Kind uint8

const (
	// KindRange covers Length offsets starting at Offset. A zero length
	// range covers nothing and is dropped by the Builder.
	KindRange Kind = iota
	// KindPoint covers exactly the one offset at Offset. Its stored length
	// is zero, which is how edge-inclusive writers encode begin == end.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is an immutable lexical scope record.
type Scope struct {
	offset    uint32
	length    uint32
	kind      Kind
	constants []Local
	variables []Local
}

// New returns a range scope covering [offset, offset+length).
func New(offset, length uint32, constants, locals []Local) (Scope, error) {
	return newScope(offset, length, KindRange, constants, locals)
}

// NewPoint returns a scope covering only the offset at offset.
func NewPoint(offset uint32, constants, locals []Local) (Scope, error) {
	return newScope(offset, 0, KindPoint, constants, locals)
}

// MustNew is like New but panics on a malformed record.
func MustNew(offset, length uint32, constants, locals []Local) Scope {
	s, err := New(offset, length, constants, locals)
	if err != nil {
		panic(err)
	}
	return s
}

// MustNewPoint is like NewPoint but panics on a malformed record.
func MustNewPoint(offset uint32, constants, locals []Local) Scope {
	s, err := NewPoint(offset, constants, locals)
	if err != nil {
		panic(err)
	}
	return s
}

func newScope(offset, length uint32, kind Kind, constants, locals []Local) (Scope, error) {
	if uint64(offset)+uint64(length) > position.MaxOffset {
		// The end offset itself must stay representable.
		return Scope{}, scopeerrors.OffsetOverflow(offset, length)
	}
	s := Scope{offset: offset, length: length, kind: kind}
	if err := checkNames("constant", constants, s.Span()); err != nil {
		return Scope{}, err
	}
	if err := checkNames("variable", locals, s.Span()); err != nil {
		return Scope{}, err
	}
	s.constants = normalize(constants)
	s.variables = normalize(locals)
	return s, nil
}

func checkNames(kind string, locals []Local, span position.Span) error {
	for i, l := range locals {
		if l == nil {
			return scopeerrors.NilLocal(kind, i, span)
		}
		if l.Name() == "" {
			return scopeerrors.UnnamedLocal(kind, i, span)
		}
	}
	return nil
}

func normalize(locals []Local) []Local {
	if len(locals) == 0 {
		return []Local{}
	}
	return slices.Clone(locals)
}

// Offset returns the first instruction offset covered.
func (s Scope) Offset() uint32 { return s.offset }

// Length returns the stored length. Point scopes report zero.
func (s Scope) Length() uint32 { return s.length }

// Kind returns whether s is a range or a point scope.
func (s Scope) Kind() Kind { return s.kind }

// IsEmpty reports a range scope that covers no offsets.
func (s Scope) IsEmpty() bool { return s.kind == KindRange && s.length == 0 }

// Span returns the offsets the scope actually covers.
func (s Scope) Span() position.Span {
	if s.kind == KindPoint {
		return position.NewSpan(s.offset, 1)
	}
	return position.NewSpan(s.offset, s.length)
}

// Constants returns the local constants declared directly in s.
func (s Scope) Constants() []Local {
	if s.constants == nil {
		return []Local{}
	}
	return slices.Clone(s.constants)
}

// Variables returns the local variables declared directly in s.
func (s Scope) Variables() []Local {
	if s.variables == nil {
		return []Local{}
	}
	return slices.Clone(s.variables)
}

func (s Scope) String() string {
	if s.kind == KindPoint {
		return fmt.Sprintf("point@%#x", s.offset)
	}
	return fmt.Sprintf("%#x+%#x", s.offset, s.length)
}
