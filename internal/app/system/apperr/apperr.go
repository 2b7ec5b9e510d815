// Package apperr defines the error taxonomy shared by stores, core components
// and HTTP handlers. Components wrap one of the sentinels with context using
// fmt.Errorf("...: %w", apperr.ErrX); handlers classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// NotFound wraps ErrNotFound with a human-readable subject ("Answer not found").
func NotFound(subject string) error {
	return &userError{msg: subject + " not found", kind: ErrNotFound}
}

// Invalid wraps ErrValidation with a single caller-facing message, for
// failures that are not tied to one input field ("Invalid credentials").
func Invalid(msg string) error {
	return &userError{msg: msg, kind: ErrValidation}
}

// Forbidden wraps ErrForbidden with the message shown to the caller.
func Forbidden(msg string) error {
	return &userError{msg: msg, kind: ErrForbidden}
}

// Conflict wraps ErrConflict with the message shown to the caller.
func Conflict(msg string) error {
	return &userError{msg: msg, kind: ErrConflict}
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries every failed rule for a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a field failure.
func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Msg: msg})
}

// OrNil returns e when it holds failures, otherwise nil.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

type userError struct {
	msg  string
	kind error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

// Message returns the caller-facing message carried by err, or "" when err
// carries none.
func Message(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	return ""
}

// FromMongo maps driver "no documents" to ErrNotFound for subject and leaves
// everything else untouched.
func FromMongo(err error, subject string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NotFound(subject)
	}
	return err
}
