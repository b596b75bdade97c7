// internal/pderr/pderr.go

// Package pderr defines the structured error type shared by every
// provisioning and deployment operation. Errors carry a stable code for
// programmatic handling, a human message, an optional cause, and free-form
// context for logging.
package pderr

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	// Connection failures (terminal for a connect attempt).
	CodeDNSFailure        Code = "DNS_FAILURE"
	CodeAuthFailure       Code = "AUTH_FAILURE"
	CodeTimeout           Code = "TIMEOUT"
	CodeHostKeyMismatch   Code = "HOST_KEY_MISMATCH"
	CodeConnectionFailure Code = "CONNECTION_FAILURE"

	// Device state failures.
	CodeUnsupportedBoard Code = "UNSUPPORTED_BOARD"
	CodeUnknownArch      Code = "UNKNOWN_ARCHITECTURE"
	CodeMissingTools     Code = "MISSING_TOOLS"

	// Resolution failures.
	CodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// Install failures.
	CodeChecksumMismatch Code = "CHECKSUM_MISMATCH"
	CodeDownloadFailure  Code = "DOWNLOAD_FAILURE"
	CodeRetriesExhausted Code = "RETRIES_EXHAUSTED"
	CodeInstallFailure   Code = "INSTALL_FAILURE"

	// Catalog integrity failures (offline checker only, never hit at
	// deployment time because the embedded catalog ships pre-validated).
	CodeDuplicateLink      Code = "DUPLICATE_LINK"
	CodeDuplicateComponent Code = "DUPLICATE_COMPONENT"
	CodeArchLinkMismatch   Code = "ARCHITECTURE_LINK_MISMATCH"

	// Deployment failures.
	CodeNotCompatible   Code = "NOT_COMPATIBLE"
	CodeTransferFailure Code = "TRANSFER_FAILURE"
	CodeLaunchFailure   Code = "LAUNCH_FAILURE"
)

// Error is the structured error used across the orchestrator.
type Error struct {
	Code    Code           // stable code for programmatic handling
	Message string         // human-readable message
	Cause   error          // underlying error, if any
	Context map[string]any // extra detail for logging
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap exposes the cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two pderr errors by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithContext attaches a key/value detail and returns the error for
// chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the given code wrapping a cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from an error chain, or "" when the chain holds
// no structured error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
