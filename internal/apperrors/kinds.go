package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the machine-readable discriminator attached to failed results.
type Kind string

const (
	KindRateUnavailable   Kind = "RATE_UNAVAILABLE"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidDate       Kind = "INVALID_DATE"
	KindInvalidAmount     Kind = "INVALID_AMOUNT"
	KindValidation        Kind = "VALIDATION"
	KindDuplicate         Kind = "DUPLICATE"
	KindForbidden         Kind = "FORBIDDEN"
	KindInternal          Kind = "INTERNAL"
)

var kindTable = []struct {
	err    error
	kind   Kind
	status int
}{
	{ErrRateUnavailable, KindRateUnavailable, http.StatusServiceUnavailable},
	{ErrInsufficientFunds, KindInsufficientFunds, http.StatusUnprocessableEntity},
	{ErrNotFound, KindNotFound, http.StatusNotFound},
	{ErrInvalidDate, KindInvalidDate, http.StatusBadRequest},
	{ErrInvalidAmount, KindInvalidAmount, http.StatusBadRequest},
	{ErrValidation, KindValidation, http.StatusBadRequest},
	{ErrDuplicate, KindDuplicate, http.StatusConflict},
	{ErrForbidden, KindForbidden, http.StatusForbidden},
}

// KindOf maps err onto its discriminator. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kindTable {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	for _, k := range kindTable {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
