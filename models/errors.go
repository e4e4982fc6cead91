package models

import "errors"

// ErrorKind classifies a failed server action.
type ErrorKind string

const (
	KindUnauthenticated  ErrorKind = "Unauthenticated"
	KindUnauthorized     ErrorKind = "Unauthorized"
	KindNotFound         ErrorKind = "NotFound"
	KindValidationFailed ErrorKind = "ValidationFailed"
	KindInvalidSignature ErrorKind = "InvalidSignature"
	KindConflict         ErrorKind = "Conflict"
	KindUpstreamFailure  ErrorKind = "UpstreamFailure"
)

// ActionError is the error returned by every service operation. Message is
// safe to show to the caller verbatim; Err carries the underlying cause.
type ActionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// NewActionError builds an ActionError of the given kind.
func NewActionError(kind ErrorKind, message string, cause error) *ActionError {
	return &ActionError{Kind: kind, Message: message, Err: cause}
}

func ErrUnauthenticated(cause error) *ActionError {
	return NewActionError(KindUnauthenticated, "Unauthenticated", cause)
}

func ErrUnauthorized() *ActionError {
	return NewActionError(KindUnauthorized, "Unauthorized", nil)
}

func ErrNotFound(message string) *ActionError {
	return NewActionError(KindNotFound, message, nil)
}

func ErrValidation(message string) *ActionError {
	return NewActionError(KindValidationFailed, message, nil)
}

func ErrInvalidSignature() *ActionError {
	return NewActionError(KindInvalidSignature, "Invalid payment signature", nil)
}

func ErrConflict(message string) *ActionError {
	return NewActionError(KindConflict, message, nil)
}

func ErrUpstream(message string, cause error) *ActionError {
	return NewActionError(KindUpstreamFailure, message, cause)
}

// ErrBookingNotFound is shared by every operation that references a booking.
func ErrBookingNotFound() *ActionError {
	return ErrNotFound("Booking not found")
}

// KindOf reports the kind of err, treating anything that is not an
// ActionError as an upstream failure.
func KindOf(err error) ErrorKind {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstreamFailure
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Something went wrong"
}
