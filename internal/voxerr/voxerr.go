// Package voxerr defines the error-kind taxonomy shared across the engine.
//
// Every error that crosses a component boundary should carry a Kind so
// callers can branch with errors.Is/errors.As instead of matching strings.
package voxerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation-policy decisions (degrade,
// abort-turn, surface-unchanged, etc).
type Kind string

const (
	InvalidInput       Kind = "invalid_input"
	NotFound           Kind = "not_found"
	Capacity           Kind = "capacity"
	Timeout            Kind = "timeout"
	BackendUnavailable Kind = "backend_unavailable"
	RateLimited        Kind = "rate_limited"
	IntegrityViolation Kind = "integrity_violation"
	Internal           Kind = "internal"
)

// Error wraps an underlying cause with a Kind and an optional user-safe
// message suitable for returning over the wire without leaking internals.
type Error struct {
	Kind     Kind
	Op       string
	UserSafe string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a Kind-tagged error for op, wrapping cause (which may be nil).
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Newf is New with a formatted cause.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Cause: fmt.Errorf(format, args...)}
}

// WithUserSafe attaches a message safe to surface to end users (e.g. a
// stage-appropriate canned response) and returns the same *Error for chaining.
func (e *Error) WithUserSafe(msg string) *Error {
	e.UserSafe = msg
	return e
}

// KindOf extracts the Kind from err's chain. ok is false when no Kind is
// found: an err that does not carry one yields Internal, a nil err "".
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Internal, false
}

// Is reports whether err's chain carries kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
