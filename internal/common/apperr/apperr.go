// Package apperr holds the error kinds shared by every layer of the service.
// Callers test for a kind with errors.Is; the concrete *Error carries the
// operation and, for validation failures, the offending field.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds
var (
	ErrAuth       = errors.New("no authenticated user")
	ErrStorage    = errors.New("storage failure")
	ErrGeneration = errors.New("generation failed")
	ErrValidation = errors.New("invalid value")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var kinds = []error{ErrAuth, ErrStorage, ErrGeneration, ErrValidation, ErrNotFound, ErrConflict}

type Error struct {
	Kind  error
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Auth(op string) error {
	return &Error{Kind: ErrAuth, Op: op}
}

func Storage(op string, err error) error {
	return &Error{Kind: ErrStorage, Op: op, Err: err}
}

func Generation(op string, err error) error {
	return &Error{Kind: ErrGeneration, Op: op, Err: err}
}

func Generationf(op, format string, args ...any) error {
	return &Error{Kind: ErrGeneration, Op: op, Err: fmt.Errorf(format, args...)}
}

// Validation reports a rejected value for a named field.
func Validation(op, field, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Field: field, Err: errors.New(msg)}
}

func NotFound(op string) error {
	return &Error{Kind: ErrNotFound, Op: op}
}

func Conflict(op, msg string) error {
	return &Error{Kind: ErrConflict, Op: op, Err: errors.New(msg)}
}

// KindOf returns the kind err belongs to, or nil when it carries none.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// FieldOf returns the field named by the first *Error in err's chain.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
