package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure class so callers can branch on it instead
// of matching message text.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUploadFailed         Code = "UPLOAD_FAILED"
	CodeSubmissionNotFound   Code = "SUBMISSION_NOT_FOUND"
	CodeIncompleteSubmission Code = "INCOMPLETE_SUBMISSION"
	CodeContractCallFailed   Code = "CONTRACT_CALL_FAILED"
	CodeWrongChain           Code = "WRONG_CHAIN"
)

// Error carries a failure code alongside the underlying cause. Every
// failure surfaced to a user passes through this type; none are fatal.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error with a message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// CodeOf extracts the failure code from an error chain. Returns false
// when no coded error is present (plain network errors and the like).
func CodeOf(err error) (Code, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code, true
	}
	return "", false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
