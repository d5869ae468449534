// Package errcode defines the coded errors surfaced in API response
// envelopes. Transport-level failures reuse the matching HTTP status as
// their code; domain codes are five digits, the first three identifying the
// module (106 users, 107 images) and the last two the specific failure.
// Domain-coded errors ride an HTTP 200 response so clients can tell, for
// example, "logged in elsewhere" apart from "never logged in".
package errcode

import "net/http"

// Code pairs a wire error code with its default message.
type Code struct {
	Code    int
	Message string
}

func (c Code) Error() string { return c.Message }

// HTTPStatus maps the code to the transport status it travels on.
func (c Code) HTTPStatus() int {
	if c.Code >= 1000 {
		return http.StatusOK
	}
	return c.Code
}

// WithDetail attaches caller context to a code. errors.Is still matches the
// bare code through Unwrap.
func (c Code) WithDetail(detail string) error {
	return &DetailedError{code: c, Detail: detail}
}

// DetailedError is a Code plus free-text detail for the envelope.
type DetailedError struct {
	code   Code
	Detail string
}

func (e *DetailedError) Error() string {
	if e.Detail == "" {
		return e.code.Message
	}
	return e.code.Message + ": " + e.Detail
}

func (e *DetailedError) Unwrap() error { return e.code }

func (e *DetailedError) Code() Code { return e.code }

var (
	ErrInvalidArgument = Code{Code: 422, Message: "invalid argument"}
	ErrUnauthorized    = Code{Code: 401, Message: "authentication required"}
	ErrForbidden       = Code{Code: 403, Message: "permission denied"}
	ErrNotFound        = Code{Code: 404, Message: "resource not found"}
	ErrInternal        = Code{Code: 500, Message: "internal server error"}
	ErrStorage         = Code{Code: 500, Message: "storage operation failed"}
)

// User module codes.
var (
	ErrUserValidate      = Code{Code: 10600, Message: "incorrect account or password"}
	ErrSessionSuperseded = Code{Code: 10604, Message: "account signed in on another device, this session has been revoked"}
	ErrUserNameExists    = Code{Code: 10605, Message: "username already exists"}
	ErrPhoneExists       = Code{Code: 10606, Message: "phone number already registered"}
	ErrAccountDisabled   = Code{Code: 10607, Message: "account disabled, contact an administrator"}
)

// Image module codes.
var (
	ErrImageUpload = Code{Code: 10700, Message: "image upload failed"}
)
