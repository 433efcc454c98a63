package robinhood

import (
	"fmt"
)

// Error is the single error type returned by the client. Callers match on
// the sentinel values below with errors.Is.
type Error struct {
	Code    string
	Message string

	// Status and Body are set for errors produced by the Transport.
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Status: e.Status, Body: e.Body, Err: e.Err}
}

func (e *Error) WithError(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, Body: e.Body, Err: err}
}

func (e *Error) withResponse(status int, body string) *Error {
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return &Error{Code: e.Code, Message: e.Message, Status: status, Body: body, Err: e.Err}
}

var (
	// ErrConfiguration means credentials were missing or contradictory.
	ErrConfiguration = &Error{
		Code:    "CONFIGURATION",
		Message: "supply either a token or a username and password",
	}

	// ErrAuthRequired is returned by gated calls made before any authorization was started.
	ErrAuthRequired = &Error{
		Code:    "AUTH_REQUIRED",
		Message: "robinhood must be authorized (login) to make this request",
	}

	// ErrLogin means the token endpoint rejected the credentials.
	ErrLogin = &Error{
		Code:    "LOGIN_FAILED",
		Message: "login rejected",
	}

	// ErrAccountPending means the credentials are valid but no brokerage account
	// has been approved yet.
	ErrAccountPending = &Error{
		Code:    "ACCOUNT_PENDING",
		Message: "no approved account for these credentials",
	}

	// ErrInvalidRequest means a request could not be built from the arguments given.
	ErrInvalidRequest = &Error{
		Code:    "INVALID_REQUEST",
		Message: "invalid request",
	}

	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = &Error{
		Code:    "TRANSPORT",
		Message: "request failed",
	}
)
