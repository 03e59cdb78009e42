package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an application error. Transport adapters map kinds to
// status codes; the kind is the only part of an error they rely on.
type ErrorKind string

const (
	KindInvalidRequest      ErrorKind = "invalid_request"
	KindListingNotAvailable ErrorKind = "listing_not_available"
	KindBookingConflict     ErrorKind = "booking_conflict"
	KindAccessDenied        ErrorKind = "access_denied"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindInternal            ErrorKind = "internal"
)

// AppError is a domain error carrying a kind and a user-facing message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same kind, so callers can write
// errors.Is(err, domain.ErrBookingConflict).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidRequest      = &AppError{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrListingNotAvailable = &AppError{Kind: KindListingNotAvailable, Message: "listing is unavailable for booking"}
	ErrBookingConflict     = &AppError{Kind: KindBookingConflict, Message: "chosen dates are unavailable for booking"}
	ErrAccessDenied        = &AppError{Kind: KindAccessDenied, Message: "access denied"}
	ErrInvalidTransition   = &AppError{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrNotFound            = &AppError{Kind: KindNotFound, Message: "not found"}
	ErrConflict            = &AppError{Kind: KindConflict, Message: "concurrent modification"}
)

// NewValidationError creates an invalid_request error.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message}
}

// NewNotFoundError creates a not_found error for the given entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError creates an access_denied error.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindAccessDenied, Message: message}
}

// NewInvalidStateError creates an invalid_transition error between two states.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewInvalidTransitionError creates an invalid_transition error with a custom message.
func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message}
}

// NewBookingConflictError creates a booking_conflict error.
func NewBookingConflictError() *AppError {
	return &AppError{Kind: KindBookingConflict, Message: ErrBookingConflict.Message}
}

// NewListingNotAvailableError creates a listing_not_available error.
func NewListingNotAvailableError(listingID string) *AppError {
	return &AppError{
		Kind:    KindListingNotAvailable,
		Message: fmt.Sprintf("listing %s is unavailable for booking", listingID),
	}
}

// NewConflictError creates a conflict error for lost optimistic updates.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// KindOf returns the kind of err, or KindInternal if err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsDomainError reports whether err carries a domain kind rather than an
// infrastructure failure.
func IsDomainError(err error) bool {
	return KindOf(err) != KindInternal
}
