// Package errors provides structured error types for greetcard.
//
// Every failure that can reach a caller of the compositor, the preview
// renderer or the HTTP API carries a machine-readable [Code]. Callers map
// codes to their own surface (HTTP status, CLI exit message) without string
// matching.
//
// # Error Codes
//
//   - TEMPLATE_NOT_FOUND: no image asset matches any known extension
//   - METADATA_PARSE: the slot descriptor exists but is malformed
//   - PHOTO_PROCESSING: a supplied photo cannot be decoded or resized
//   - PERSISTENCE: the optional record keeper failed (recovered, logged)
//   - INVALID_SLOT: slot geometry cannot be laid out
//   - INVALID_INPUT: request validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTemplateNotFound, "template %q not found", id)
//	if errors.Is(err, errors.ErrCodeTemplateNotFound) {
//	    // 404
//	}
//
//	err := errors.Wrap(errors.ErrCodePhotoProcessing, origErr, "decode photo")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidSlot  Code = "INVALID_SLOT"
	ErrCodeInvalidColor Code = "INVALID_COLOR"
	ErrCodeTooLarge     Code = "PAYLOAD_TOO_LARGE"

	// Resource errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	ErrCodeMetadataParse    Code = "METADATA_PARSE"

	// Processing errors
	ErrCodePhotoProcessing Code = "PHOTO_PROCESSING"
	ErrCodeRenderFailed    Code = "RENDER_FAILED"
	ErrCodePersistence     Code = "PERSISTENCE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
