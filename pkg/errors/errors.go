package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the per-link failure classes a download can end in
type ErrorType string

const (
	ErrorTypeInvalidReference ErrorType = "invalid_reference"
	ErrorTypeFetchFailed      ErrorType = "fetch_failed"
	ErrorTypeNoAsset          ErrorType = "no_asset"
	ErrorTypeWriteFailed      ErrorType = "write_failed"
)

// Cause narrows a fetch or write failure down to what went wrong
type Cause string

const (
	// Fetch causes
	CauseNetwork    Cause = "network"
	CauseTimeout    Cause = "timeout"
	CauseHTTPStatus Cause = "http_status"

	// Write causes
	CausePermission  Cause = "permission"
	CauseDiskFull    Cause = "disk_full"
	CausePathInvalid Cause = "path_invalid"
	CauseIO          Cause = "io"
)

// Error is the typed error carried through the download pipeline
type Error struct {
	Type    ErrorType
	Cause   Cause
	Message string
	// Code is the HTTP status for CauseHTTPStatus, 0 otherwise
	Code int
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Type)
	if e.Cause != "" {
		msg += " (" + string(e.Cause) + ")"
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" [%d]", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidReference reports input that does not look like a pin link
func InvalidReference(input, reason string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidReference,
		Message: fmt.Sprintf("%q: %s", input, reason),
	}
}

// FetchFailed reports a page or asset retrieval failure
func FetchFailed(cause Cause, code int, msg string, err error) *Error {
	return &Error{
		Type:    ErrorTypeFetchFailed,
		Cause:   cause,
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// NoAssetFound reports a reachable page with nothing downloadable on it
func NoAssetFound(pageURL string) *Error {
	return &Error{
		Type:    ErrorTypeNoAsset,
		Message: "no downloadable asset found on " + pageURL,
	}
}

// WriteFailed reports a storage failure
func WriteFailed(cause Cause, path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeWriteFailed,
		Cause:   cause,
		Message: path,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or "" when err is not a pipeline error
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// CauseOf returns the Cause of err, or "" when err is not a pipeline error
func CauseOf(err error) Cause {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Cause
	}
	return ""
}

func IsInvalidReference(err error) bool { return TypeOf(err) == ErrorTypeInvalidReference }
func IsFetchFailed(err error) bool      { return TypeOf(err) == ErrorTypeFetchFailed }
func IsNoAsset(err error) bool          { return TypeOf(err) == ErrorTypeNoAsset }
func IsWriteFailed(err error) bool      { return TypeOf(err) == ErrorTypeWriteFailed }

// CauseForStatus maps an HTTP status code onto a fetch cause
func CauseForStatus(statusCode int) Cause {
	if statusCode == 0 {
		return CauseNetwork
	}
	return CauseHTTPStatus
}
