package docchat

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// EEXTRACT means no credential could be recovered from the target site.
	EEXTRACT = "extraction_failed"
	// ECHALLENGE means the challenge endpoint answered with a non-2xx status.
	ECHALLENGE = "challenge_request_failed"
	// EEXHAUSTED means no nonce within the declared bound solves the challenge.
	EEXHAUSTED = "challenge_exhausted"
	// ECHAT means the chat endpoint answered with a non-2xx status.
	ECHAT = "chat_request_failed"
	// ESTREAM means the upstream connection failed mid-stream.
	ESTREAM = "stream_transport"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docchat error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
