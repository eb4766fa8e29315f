package dto

import (
	"github.com/SscSPs/finance_assistant/internal/apperrors"
)

// Result is the envelope returned by every assistant tool. ErrorKind is set
// on failure so callers can branch without parsing Message.
type Result[T any] struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Data      *T             `json:"data,omitempty"`
	ErrorKind apperrors.Kind `json:"errorKind,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

// SuccessResult wraps data in a successful Result.
func SuccessResult[T any](message string, data T) Result[T] {
	return Result[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

// ErrorResult converts err into a failed Result.
func ErrorResult[T any](err error, errors ...string) Result[T] {
	return Result[T]{
		Success:   false,
		Message:   err.Error(),
		ErrorKind: apperrors.KindOf(err),
		Errors:    errors,
	}
}
