package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller does not own the requested resource.
var ErrForbidden = errors.New("forbidden")

// ErrRateUnavailable indicates that neither the live source nor the rate cache could price a currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ErrInsufficientFunds indicates that a withdrawal would drive the reference balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidDate indicates a date that does not follow the YYYY-MM-DD layout.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidAmount indicates a zero, negative or otherwise unusable amount or percentage.
var ErrInvalidAmount = errors.New("invalid amount")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
// Storage adapters use it for infrastructure failures.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error matching ErrNotFound.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationError returns an error matching ErrValidation.
func NewValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}
