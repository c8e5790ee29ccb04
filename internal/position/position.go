// Package position provides instruction-offset range tracking for the
// scope tree. Offsets index a compiled method's generated instruction
// stream; a Span is the half-open range of offsets a scope covers.
package position

import (
	"fmt"
	"math"
)

// MaxOffset is the largest representable instruction offset.
const MaxOffset = math.MaxUint32

// Span represents a range of instruction offsets
type Span struct {
	Start uint64 // First covered offset (inclusive)
	End   uint64 // First offset not covered (exclusive)
}

// NewSpan returns the span starting at offset and covering length units.
func NewSpan(offset, length uint32) Span {
	return Span{Start: uint64(offset), End: uint64(offset) + uint64(length)}
}

// IsValid returns true if the span is well formed and addressable
func (s Span) IsValid() bool {
	return s.Start <= s.End && s.End <= MaxOffset+1
}

// IsEmpty returns true if the span covers no offsets
func (s Span) IsEmpty() bool {
	return s.Start >= s.End
}

// Len returns the number of offsets covered
func (s Span) Len() uint64 {
	if s.IsEmpty() {
		return 0
	}
	return s.End - s.Start
}

// String returns a string representation of the span
func (s Span) String() string {
	return fmt.Sprintf("[%#x, %#x)", s.Start, s.End)
}

// ContainsOffset returns true if offset lies inside the span
func (s Span) ContainsOffset(offset uint32) bool {
	o := uint64(offset)
	return s.Start <= o && o < s.End
}

// Contains returns true if other lies fully inside s. Equal spans contain
// each other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps returns true if the spans share at least one offset. Spans that
// only touch at a boundary do not overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Disjoint returns true if the spans share no offset
func (s Span) Disjoint(other Span) bool {
	return !s.Overlaps(other)
}

// PartiallyOverlaps returns true if the spans overlap while neither
// contains the other.
func (s Span) PartiallyOverlaps(other Span) bool {
	return s.Overlaps(other) && !s.Contains(other) && !other.Contains(s)
}

// Union returns a span that encompasses both spans
func (s Span) Union(other Span) Span {
	if s.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return s
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}
