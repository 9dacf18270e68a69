// Package apperr defines the errors that the contacts service reports to its callers and the HTTP
// status code that belongs to each of them.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// internalMessage is the only detail a client gets to see for unexpected failures.
const internalMessage = "Internal server error"

// ValidationError means that the client sent a malformed request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError means that the referenced record does not exist.
type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// PersistenceError means that a store operation failed. Op names the operation, Err is the cause
// which is only ever logged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Validation creates a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFoundError for the given resource and id.
func NotFound(resource string, id string) error {
	return &NotFoundError{Resource: resource, Id: id}
}

// Persistence wraps the cause of a failed store operation.
func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Status maps an error to the HTTP status code and the message that the client receives. Errors
// outside the taxonomy are treated like persistence errors so that no internals leak.
func Status(err error) (int, string) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Message
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, notFoundErr.Error()
	}
	return http.StatusInternalServerError, internalMessage
}
