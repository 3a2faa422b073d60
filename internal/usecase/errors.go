package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorAuth        ErrorCode = "AUTH_ERROR"
	ErrorValidation  ErrorCode = "VALIDATION_ERROR"
	ErrorGateway     ErrorCode = "GATEWAY_ERROR"
	ErrorCatalogMiss ErrorCode = "CATALOG_MISS"
	ErrorInternal    ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds an *Error. Packages outside usecase use it to report codes
// the webhook boundary understands.
func NewError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the code carried by err, or ErrorInternal when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ErrorInternal
}
