// Package apperr defines the typed business-error taxonomy shared by the
// application services. Handlers map kinds to HTTP statuses; services return
// them as plain error values and callers branch with KindOf or errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business or infrastructure failure.
type Kind int

const (
	Unknown Kind = iota
	NotFound
	ValidationError
	Forbidden
	CapacityExceeded
	AlreadyRegistered
	NotRegistered
	LocationNotAssigned
	LocationMismatch
	TimeConflict
	ConflictResolutionFailed
	InvalidRole
	AlreadyMember
	LastMember
	NotMember
	Timeout
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case ValidationError:
		return "validation_error"
	case Forbidden:
		return "forbidden"
	case CapacityExceeded:
		return "capacity_exceeded"
	case AlreadyRegistered:
		return "already_registered"
	case NotRegistered:
		return "not_registered"
	case LocationNotAssigned:
		return "location_not_assigned"
	case LocationMismatch:
		return "location_mismatch"
	case TimeConflict:
		return "time_conflict"
	case ConflictResolutionFailed:
		return "conflict_resolution_failed"
	case InvalidRole:
		return "invalid_role"
	case AlreadyMember:
		return "already_member"
	case LastMember:
		return "last_member"
	case NotMember:
		return "not_member"
	case Timeout:
		return "timeout"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error carries a kind, a user-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given kind and message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, or Unknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps a kind to the status the request layer should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case ValidationError, InvalidRole:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case CapacityExceeded, AlreadyRegistered, NotRegistered,
		LocationNotAssigned, LocationMismatch, TimeConflict,
		ConflictResolutionFailed, AlreadyMember, LastMember, NotMember:
		return http.StatusConflict
	case Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
