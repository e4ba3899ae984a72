package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by DomainError.
const (
	CodeValidation          = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewUpstreamUnavailable reports a failed call to a peer service. It renders as a
// generic server error.
func NewUpstreamUnavailable(peer string, err error, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["peer"] = peer
	return &DomainError{
		Code:       CodeUpstreamUnavailable,
		Message:    fmt.Sprintf("%s unavailable", peer),
		HTTPStatus: http.StatusInternalServerError,
		Details:    details,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Unknown errors become
// internal errors.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound reports whether err carries a NOT_FOUND DomainError.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsConflict reports whether err carries a CONFLICT DomainError.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

// IsUpstreamUnavailable reports whether err carries an UPSTREAM_UNAVAILABLE DomainError.
func IsUpstreamUnavailable(err error) bool {
	return hasCode(err, CodeUpstreamUnavailable)
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
