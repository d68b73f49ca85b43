package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every error the engine surfaces to callers.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindBusinessRule ErrorKind = "business_rule"
)

// DomainError is the wire-level error shape: {kind, message}.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

func Validationf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func BusinessRulef(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err down to a DomainError and reports its kind; empty string
// when err carries no domain classification.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
