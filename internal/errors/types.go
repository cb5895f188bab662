package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeContent    ErrorType = "content"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeLink       ErrorType = "link"
)

// StanzaError is a structured error type with context.
type StanzaError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Route       string
	FilePath    string
	Line        int
	Recoverable bool
}

// Error implements the error interface.
func (e *StanzaError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Route != "" {
		parts = append(parts, "route:"+e.Route)
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *StanzaError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *StanzaError) Is(target error) bool {
	var t *StanzaError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithLocation adds file location information.
func (e *StanzaError) WithLocation(filePath string, line int) *StanzaError {
	e.FilePath = filePath
	e.Line = line
	return e
}

// WithRoute adds route context.
func (e *StanzaError) WithRoute(route string) *StanzaError {
	e.Route = route
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *StanzaError {
	return &StanzaError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewContentError creates an error for a malformed source document.
func NewContentError(code, message string, cause error) *StanzaError {
	return &StanzaError{
		Type:        ErrorTypeContent,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewBuildError creates an error for a failed build step.
func NewBuildError(code, message string, cause error) *StanzaError {
	return &StanzaError{
		Type:    ErrorTypeBuild,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *StanzaError {
	return &StanzaError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewLinkError creates an error for a broken internal reference.
func NewLinkError(code, message string) *StanzaError {
	return &StanzaError{
		Type:        ErrorTypeLink,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}
