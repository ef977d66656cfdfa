// Package apperr holds the error taxonomy shared by services and delivery:
// authentication, permission, validation and partial-write failures.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("not allowed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied by the backend")
	ErrIndexRequired    = errors.New("database requires a composite index for this query")
	ErrPartialWrite     = errors.New("partial write")
	ErrAlreadyReviewed  = errors.New("product already reviewed")
	ErrNotEligible      = errors.New("no delivered order contains this product")
	ErrValidation       = errors.New("validation failed")
	ErrEmptyCart        = errors.New("cart is empty")
)

// ValidationError is a client-side rejection raised before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PartialWriteError reports a multi-step write that stopped part way. Nothing
// is rolled back; Completed tells how many steps landed.
type PartialWriteError struct {
	Op        string
	Completed int
	Failed    int
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: partial write (%d done, %d failed): %v", e.Op, e.Completed, e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

// messenger is implemented by errors that carry their own shopper-facing text.
type messenger interface {
	UserMessage() string
}

// UserMessage turns err into the short text of a transient notification.
func UserMessage(err error) string {
	var verr *ValidationError
	var m messenger
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &m):
		return m.UserMessage()
	case errors.Is(err, ErrUnauthenticated):
		return "Please sign in to continue."
	case errors.Is(err, ErrAlreadyReviewed):
		return "You've already reviewed this product."
	case errors.Is(err, ErrNotEligible):
		return "You can only review products you've purchased and received."
	case errors.Is(err, ErrIndexRequired):
		return "Database requires a new index for this query."
	case errors.Is(err, ErrPermissionDenied):
		// Surfaced verbatim; usually a missing backend rule.
		return err.Error()
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, ErrForbidden):
		return "You can't change this item."
	case errors.Is(err, ErrNotFound):
		return "We couldn't find what you were looking for."
	case errors.Is(err, ErrPartialWrite):
		return "Something went wrong. Please try again."
	default:
		return "An error occurred. Please try again."
	}
}
