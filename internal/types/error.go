package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of these.
var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrPartialFailure    = errors.New("partial failure")
)

// CustomError carries an HTTP code and an error type for the response envelope
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// KindError pairs a kind sentinel with a human readable message
type KindError struct {
	Kind    error
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the kind sentinel
func (e *KindError) Is(target error) bool {
	return target == e.Kind
}

func (e *KindError) Unwrap() error {
	return e.Err
}

func newKind(kind error, format string, args ...interface{}) error {
	return &KindError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a validation error
func Validation(format string, args ...interface{}) error {
	return newKind(ErrValidation, format, args...)
}

// NotFound returns a not found error
func NotFound(format string, args ...interface{}) error {
	return newKind(ErrNotFound, format, args...)
}

// Conflict returns a conflict error
func Conflict(format string, args ...interface{}) error {
	return newKind(ErrConflict, format, args...)
}

// Forbidden returns a forbidden error
func Forbidden(format string, args ...interface{}) error {
	return newKind(ErrForbidden, format, args...)
}

// RemoteUnavailable wraps a storage failure. A nil err yields nil.
func RemoteUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: ErrRemoteUnavailable, Message: op, Err: err}
}

// PartialFailureError reports a multi-step operation whose first step
// committed while a later step failed. Committed holds the result of the
// first step.
type PartialFailureError struct {
	Step      string
	Committed interface{}
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure at %s: %v", e.Step, e.Err)
}

// Is matches ErrPartialFailure
func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind sentinel carried by err, or nil
func KindOf(err error) error {
	for _, k := range []error{ErrPartialFailure, ErrValidation, ErrNotFound, ErrConflict, ErrForbidden, ErrRemoteUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
