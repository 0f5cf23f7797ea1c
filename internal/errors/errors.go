// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeMalformedState indicates persisted state that failed to parse or has the wrong shape.
	// It is recovered locally and never returned to callers of the engines.
	TypeMalformedState Type = "MALFORMED_STATE"

	// TypeInvalidQuantity indicates a non-positive or non-numeric quantity
	TypeInvalidQuantity Type = "INVALID_QUANTITY"

	// TypeUnknownID indicates an operation on an id that is not present
	TypeUnknownID Type = "UNKNOWN_ID"

	// TypeEmptyCart indicates a checkout attempt on an empty cart
	TypeEmptyCart Type = "EMPTY_CART"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeStorage indicates a persistence backend error
	TypeStorage Type = "STORAGE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotFound indicates a lookup miss (unknown tier, unknown product)
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// UserVisible reports whether the error is meant to be shown to the shopper as-is.
func (e *Error) UserVisible() bool {
	return e.Type == TypeEmptyCart
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// MalformedState creates a malformed persisted state error
func MalformedState(key string, cause error) *Error {
	return Wrapf(TypeMalformedState, cause, "malformed persisted state under %q", key)
}

// InvalidQuantity creates an invalid quantity error
func InvalidQuantity(id string, requested int) *Error {
	return Newf(TypeInvalidQuantity, "invalid quantity %d for %s", requested, id).
		WithContext("id", id).
		WithContext("requested", requested)
}

// UnknownID creates an unknown id error
func UnknownID(collection, id string) *Error {
	return Newf(TypeUnknownID, "%s has no entry %s", collection, id)
}

// EmptyCart creates the checkout rejection shown to the shopper
func EmptyCart() *Error {
	return New(TypeEmptyCart, "Your cart is empty")
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Storage creates a storage error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
