package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies domain failures so handlers can map them to HTTP
// status codes without inspecting messages.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindValidation  ErrorKind = "VALIDATION_FAILED"
	KindIntegrity   ErrorKind = "CONFLICT"
	KindPersistence ErrorKind = "INTERNAL"
)

// Error is the structured error returned by every service operation.
// Message is safe to show to API clients except for KindPersistence.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound    = &Error{Kind: KindNotFound, Message: "no encontrado"}
	ErrValidation  = &Error{Kind: KindValidation, Message: "datos invalidos"}
	ErrIntegrity   = &Error{Kind: KindIntegrity, Message: "conflicto de integridad"}
	ErrPersistence = &Error{Kind: KindPersistence, Message: "error de persistencia"}
)

func notFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func integrity(msg string) error { return &Error{Kind: KindIntegrity, Message: msg} }

func persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// classify converts a repository error into a domain error. Errors that are
// already domain errors pass through untouched.
func classify(err error, op, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(notFoundMsg)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return integrity("la operacion viola una referencia existente")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return integrity("el registro ya existe")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return validationf("la operacion viola una restriccion de datos")
	}
	return persistence(op, err)
}
