// Package errs defines the error kinds shared by the domain packages.
// Domain packages declare their sentinel errors as *Error values so callers
// can match a specific failure with errors.Is and map the broader kind to a
// transport status with KindOf.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the operation that produced it
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is malformed input: bad enum value, length or charset violations
	KindValidation
	// KindInvariant is a business rule breach: self-like, duplicate friend, missing parent comment
	KindInvariant
	// KindForbidden is the unauthorized subset of invariant violations
	KindForbidden
	// KindNotFound is a missing aggregate or child entity
	KindNotFound
	// KindConflict is a uniqueness or optimistic concurrency failure at the persistence boundary
	KindConflict
	// KindPersistence is an adapter level failure (connection, constraint, driver)
	KindPersistence
	// KindUnimplemented is a capability with no backing adapter
	KindUnimplemented
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationFailure"
	case KindInvariant:
		return "InvariantViolation"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindPersistence:
		return "PersistenceFailure"
	case KindUnimplemented:
		return "UnimplementedCapability"
	default:
		return "Unknown"
	}
}

// Error is a kinded error. Err, when set, is the wrapped cause.
type Error struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		var inner *Error
		if errors.As(e.Err, &inner) {
			// Detail errors already carry the sentinel text in Message
			return e.Message
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation failure
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Invariant creates a business rule violation
func Invariant(message string) *Error {
	return New(KindInvariant, message)
}

// Forbidden creates an authorization failure
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound creates a not-found failure
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict creates a conflict failure
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Persistence wraps an adapter error with the operation that failed
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: "failed to " + op, Err: err}
}

// Unimplemented reports a capability that has no backing adapter
func Unimplemented(capability string) *Error {
	return New(KindUnimplemented, capability+" is not implemented")
}

// Detail returns a copy of sentinel with extra context appended to its message.
// errors.Is(result, sentinel) still holds.
func Detail(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message + ": " + fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindUnknown when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInvariantViolation reports business rule breaches, including the forbidden subset
func IsInvariantViolation(err error) bool {
	k := KindOf(err)
	return k == KindInvariant || k == KindForbidden
}

// MessageOf returns the user facing message of the outermost *Error,
// falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
