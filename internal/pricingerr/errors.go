// Package pricingerr defines the error taxonomy shared by the validation,
// pricing and rules engines.
package pricingerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pricing pipeline failure.
type Kind string

const (
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindMissingRequired  Kind = "MISSING_REQUIRED"
	KindOutOfRange       Kind = "OUT_OF_RANGE"
	KindInvalidService   Kind = "INVALID_SERVICE"
	KindCalculationError Kind = "CALCULATION_ERROR"
	KindValidationError  Kind = "VALIDATION_ERROR"
	KindRuleError        Kind = "RULE_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
)

// FieldError describes a single broken field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single typed error raised by the pricing pipeline.
type Error struct {
	Kind    Kind           `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetail attaches a detail entry and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Validation builds a VALIDATION_ERROR carrying the field-level error list.
func Validation(fieldErrors []FieldError) *Error {
	msg := "input validation failed"
	if len(fieldErrors) == 1 {
		msg = fmt.Sprintf("input validation failed: %s %s", fieldErrors[0].Field, fieldErrors[0].Message)
	}
	return New(KindValidationError, msg).WithDetail("errors", fieldErrors)
}

// KindOf returns the kind of err, or "" when err is not a pricing error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// Is reports whether err is a pricing error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldErrors extracts the field errors of a VALIDATION_ERROR.
func FieldErrors(err error) []FieldError {
	var pe *Error
	if !errors.As(err, &pe) || pe.Details == nil {
		return nil
	}
	fe, _ := pe.Details["errors"].([]FieldError)
	return fe
}
