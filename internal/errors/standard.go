// Package errors provides the error taxonomy for scope tree construction.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/orizon-lang/scopetree/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	// CategoryMalformed marks a record that violates its own invariants,
	// such as an unnamed local. It indicates a front-end defect.
	CategoryMalformed ErrorCategory = "MALFORMED_RECORD"
	// CategoryStructural marks a tree that cannot be nested correctly.
	CategoryStructural ErrorCategory = "STRUCTURAL_DEFECT"
	// CategoryConfiguration marks invalid tool configuration.
	CategoryConfiguration ErrorCategory = "CONFIGURATION"
)

// ScopeError provides a consistent error format
type ScopeError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Span     position.Span
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *ScopeError) Error() string {
	if e.Span != (position.Span{}) {
		return fmt.Sprintf("[%s:%s] %s at %s", e.Category, e.Code, e.Message, e.Span)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// NewScopeError creates a new standardized error
func NewScopeError(category ErrorCategory, code, message string, span position.Span, context map[string]interface{}) *ScopeError {
	pc, _, _, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &ScopeError{
		Category: category,
		Code:     code,
		Message:  message,
		Span:     span,
		Context:  context,
		Caller:   caller,
	}
}

// IsCategory reports whether err wraps a ScopeError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var se *ScopeError
	return stderrors.As(err, &se) && se.Category == category
}

// IsMalformed reports whether err wraps a malformed-record error.
func IsMalformed(err error) bool { return IsCategory(err, CategoryMalformed) }

// IsStructural reports whether err wraps a structural-defect error.
func IsStructural(err error) bool { return IsCategory(err, CategoryStructural) }

// Malformed-record constructors

func UnnamedLocal(kind string, index int, span position.Span) *ScopeError {
	return NewScopeError(CategoryMalformed, "UNNAMED_LOCAL",
		fmt.Sprintf("%s #%d has no display name", kind, index),
		span, map[string]interface{}{"kind": kind, "index": index})
}

func NilLocal(kind string, index int, span position.Span) *ScopeError {
	return NewScopeError(CategoryMalformed, "NIL_LOCAL",
		fmt.Sprintf("%s #%d is nil", kind, index),
		span, map[string]interface{}{"kind": kind, "index": index})
}

func OffsetOverflow(offset, length uint32) *ScopeError {
	return NewScopeError(CategoryMalformed, "OFFSET_OVERFLOW",
		fmt.Sprintf("offset %d with length %d exceeds the 32-bit offset space", offset, length),
		position.Span{}, map[string]interface{}{"offset": offset, "length": length})
}

// Structural-defect constructors

func PartialOverlap(span, other position.Span) *ScopeError {
	return NewScopeError(CategoryStructural, "PARTIAL_OVERLAP",
		fmt.Sprintf("scope partially overlaps %s without containment", other),
		span, map[string]interface{}{"other": other.String()})
}

func NotContained(span, parent position.Span) *ScopeError {
	return NewScopeError(CategoryStructural, "NOT_CONTAINED",
		fmt.Sprintf("scope is not contained in parent %s", parent),
		span, map[string]interface{}{"parent": parent.String()})
}

func DuplicateName(name string, span position.Span) *ScopeError {
	return NewScopeError(CategoryStructural, "DUPLICATE_NAME",
		fmt.Sprintf("local %q declared more than once in the same scope", name),
		span, map[string]interface{}{"name": name})
}

func ExceedsMethod(span position.Span, methodLength uint32) *ScopeError {
	return NewScopeError(CategoryStructural, "EXCEEDS_METHOD",
		fmt.Sprintf("scope extends past the method body length %d", methodLength),
		span, map[string]interface{}{"method_length": methodLength})
}

func MultipleRoots(span, first position.Span) *ScopeError {
	return NewScopeError(CategoryStructural, "MULTIPLE_ROOTS",
		fmt.Sprintf("second top-level scope outside %s in an ordinary method", first),
		span, map[string]interface{}{"first": first.String()})
}

func EmptyScope(span position.Span) *ScopeError {
	return NewScopeError(CategoryStructural, "EMPTY_SCOPE",
		"zero-length range scope present in tree",
		span, nil)
}

// InvalidConfig reports a configuration value that cannot be used.
func InvalidConfig(key string, value interface{}, reason string) *ScopeError {
	return NewScopeError(CategoryConfiguration, "INVALID_CONFIG",
		fmt.Sprintf("invalid %s %v: %s", key, value, reason),
		position.Span{}, map[string]interface{}{"key": key, "value": value})
}
