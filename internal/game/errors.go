package game

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. Validation and state-conflict errors are expected
// control flow and carry a player-facing message; unexpected errors
// wrap the underlying store or integration failure.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

func conflictf(format string, args ...interface{}) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

func internal(op string, err error) error {
	return &UnexpectedError{Op: op, Err: err}
}

// HTTPStatus maps an engine error to its HTTP status class.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var nf *NotFoundError
	var sc *StateConflictError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &sc):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
