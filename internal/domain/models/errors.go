package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to the cashier.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindTransport  ErrorKind = "transport"
	KindServer     ErrorKind = "server"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrUnknownReceipt   = errors.New("unknown receipt type")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Error carries a human-readable message together with its kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a validation failure wrapping cause.
func NewValidationError(message string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: cause}
}

// NewAuthError builds an authentication failure.
func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message, Err: ErrUnauthenticated}
}

// NewTransportError wraps a network level failure.
func NewTransportError(cause error) *Error {
	return &Error{Kind: KindTransport, Message: cause.Error(), Err: cause}
}

// NewServerError builds a failure for a non-success response.
func NewServerError(status int, message string) *Error {
	return &Error{Kind: KindServer, Status: status, Message: message}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Message extracts the text a cashier should see for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
