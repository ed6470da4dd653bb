package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Auth codes. Always mapped to an unauthorized-class response.
const (
	CodeMissingCredentials = "MISSING_CREDENTIALS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeProfileRequired    = "PROFILE_REQUIRED"
	CodeAdminRequired      = "ADMIN_REQUIRED"
	CodeInvalidLogin       = "INVALID_LOGIN"
)

// State-machine codes. Mapped to a client error that names the expected
// next state so the caller can self-correct.
const (
	CodeNotStarted              = "NOT_STARTED"
	CodeAlreadyStarted          = "ALREADY_STARTED"
	CodeAlreadyCompleted        = "ALREADY_COMPLETED"
	CodeOutOfOrder              = "OUT_OF_ORDER"
	CodeDuplicateSubmission     = "DUPLICATE_SUBMISSION"
	CodeNotAtFeedbackStage      = "NOT_AT_FEEDBACK_STAGE"
	CodeAlreadyRated            = "ALREADY_RATED"
	CodeSessionAlreadyCompleted = "SESSION_ALREADY_COMPLETED"
)

const (
	CodeNotFound   = "NOT_FOUND"
	CodeForbidden  = "FORBIDDEN"
	CodeBadRequest = "BAD_REQUEST"
	CodeEmailTaken = "EMAIL_TAKEN"
	CodeInternal   = "INTERNAL"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Newf(status int, code, format string, args ...interface{}) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

func Unauthorized(code string, err error) *Error {
	return New(http.StatusUnauthorized, code, err)
}

func Forbidden(code string, err error) *Error {
	return New(http.StatusForbidden, code, err)
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// From returns err as an *Error, wrapping unclassified errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
