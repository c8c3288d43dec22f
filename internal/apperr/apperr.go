// Package apperr defines the closed set of error kinds the engine façade
// returns (spec.md §7). Every component in the core wraps its failures in
// one of these kinds so the façade never has to guess at intent from an
// opaque error string.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the façade surfaces.
type Kind int

const (
	// InvalidArgument covers bad paths, NaN weights, and negative edge
	// weights.
	InvalidArgument Kind = iota
	// DimensionMismatchKind specializes InvalidArgument for vector
	// dimension errors, which callers usually want to handle distinctly.
	DimensionMismatchKind
	// NotFound covers an unknown path or node.
	NotFound
	// AlreadyExists is returned only by operations that forbid overwrite.
	AlreadyExists
	// Unreachable is returned when a graph query's target cannot be
	// reached from its source.
	Unreachable
	// ResourceExhausted is returned when pool growth hits the memory cap.
	ResourceExhausted
	// Timeout is returned when a caller-supplied deadline expires.
	Timeout
	// Fatal marks an invariant violation; the engine is unsafe to use
	// further once one is observed.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case DimensionMismatchKind:
		return "DimensionMismatch"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case Unreachable:
		return "Unreachable"
	case ResourceExhausted:
		return "ResourceExhausted"
	case Timeout:
		return "Timeout"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is a tagged error: a Kind plus a human-readable message and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a tagged error of the given kind.
func New(k Kind, msg string) error {
	return &Error{Kind: k, Message: msg}
}

// Newf constructs a tagged error of the given kind with a formatted message.
func Newf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(k Kind, msg string, cause error) error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// Is reports whether err (or something it wraps) is a tagged Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// DimensionMismatch is InvalidArgument specialized for vector dimension
// errors, named separately in spec.md §4.4/§7 because callers benefit from
// distinguishing it from a generic bad argument.
func DimensionMismatch(want, got int) error {
	return Newf(DimensionMismatchKind, "dimension mismatch: want %d, got %d", want, got)
}
