// Package apperr defines the error taxonomy shared by the validator, the
// backend client and the workflow state machines.
//
// Every failure the user can see is one of four kinds:
//
//   - Validation: rejected locally before any network call (bad size, type,
//     column index, language)
//   - Network: the backend could not be reached at all
//   - Backend: the backend answered with a non-2xx status
//   - State: an operation was invoked out of sequence
//
// Errors carry a Code so callers can branch with errors.Is against the
// sentinel values below without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNetwork
	KindBackend
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindBackend:
		return "backend"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Code identifies the specific condition within a Kind.
type Code string

const (
	CodeNoFileSelected      Code = "no_file_selected"
	CodeSizeExceeded        Code = "size_exceeded"
	CodeUnsupportedType     Code = "unsupported_type"
	CodeColumnOutOfRange    Code = "column_out_of_range"
	CodeUnsupportedLanguage Code = "unsupported_language"

	CodeUnreachable Code = "unreachable"
	CodeBadStatus   Code = "bad_status"
	CodeBadPayload  Code = "bad_payload"

	CodeRequestInFlight Code = "request_in_flight"
	CodeNotUploaded     Code = "not_uploaded"
	CodeStale           Code = "stale"
	CodeNoResults       Code = "no_results"
)

// GenericBackendMessage is shown when the backend fails without a detail.
const GenericBackendMessage = "request failed"

// Error is the concrete error type for all four kinds.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	// Status is the HTTP status for KindBackend errors.
	Status int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same kind and code.
// A target with an empty Code matches any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrBackend    = &Error{Kind: KindBackend}
	ErrState      = &Error{Kind: KindState}

	ErrNoFileSelected   = &Error{Kind: KindValidation, Code: CodeNoFileSelected}
	ErrSizeExceeded     = &Error{Kind: KindValidation, Code: CodeSizeExceeded}
	ErrUnsupportedType  = &Error{Kind: KindValidation, Code: CodeUnsupportedType}
	ErrColumnOutOfRange = &Error{Kind: KindValidation, Code: CodeColumnOutOfRange}
	ErrUnsupportedLang  = &Error{Kind: KindValidation, Code: CodeUnsupportedLanguage}
	// ErrNoSelection is the state form of NoFileSelected: an upload was
	// started with nothing selected. ErrNoFileSelected is the validator's.
	ErrNoSelection      = &Error{Kind: KindState, Code: CodeNoFileSelected}
	ErrRequestInFlight  = &Error{Kind: KindState, Code: CodeRequestInFlight}
	ErrNotUploaded      = &Error{Kind: KindState, Code: CodeNotUploaded}
	ErrStale            = &Error{Kind: KindState, Code: CodeStale}
	ErrNoResults        = &Error{Kind: KindState, Code: CodeNoResults}
)

// Validation returns a KindValidation error.
func Validation(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// State returns a KindState error.
func State(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Code: CodeUnreachable, Message: "backend unreachable", Err: err}
}

// Backend returns an error for a non-2xx response. An empty detail is
// replaced by GenericBackendMessage.
func Backend(status int, detail string) *Error {
	if detail == "" {
		detail = GenericBackendMessage
	}
	return &Error{Kind: KindBackend, Code: CodeBadStatus, Status: status, Message: detail}
}

// BadPayload reports a 2xx response whose body could not be understood.
func BadPayload(err error) *Error {
	return &Error{Kind: KindBackend, Code: CodeBadPayload, Message: "unexpected response from backend", Err: err}
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Detail returns the user-facing message of err. Backend errors yield the
// server detail verbatim.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
