package rpc

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/mailthemes/internal/api/apiutil"
	"github.com/codr1/mailthemes/internal/api/authz"
)

// Code is a tRPC error code name.
type Code string

const (
	CodeParseError          Code = "PARSE_ERROR"
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeMethodNotSupported  Code = "METHOD_NOT_SUPPORTED"
	CodeTooManyRequests     Code = "TOO_MANY_REQUESTS"
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
)

var codeInfo = map[Code]struct {
	rpc    int
	status int
}{
	CodeParseError:          {rpc: -32700, status: http.StatusBadRequest},
	CodeBadRequest:          {rpc: -32600, status: http.StatusBadRequest},
	CodeUnauthorized:        {rpc: -32001, status: http.StatusUnauthorized},
	CodeForbidden:           {rpc: -32003, status: http.StatusForbidden},
	CodeNotFound:            {rpc: -32004, status: http.StatusNotFound},
	CodeMethodNotSupported:  {rpc: -32005, status: http.StatusMethodNotAllowed},
	CodeTooManyRequests:     {rpc: -32029, status: http.StatusTooManyRequests},
	CodeInternalServerError: {rpc: -32603, status: http.StatusInternalServerError},
}

// HTTPStatus returns the status code sent with c.
func (c Code) HTTPStatus() int {
	if info, ok := codeInfo[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// RPCCode returns the JSON-RPC numeric code for c.
func (c Code) RPCCode() int {
	if info, ok := codeInfo[c]; ok {
		return info.rpc
	}
	return codeInfo[CodeInternalServerError].rpc
}

// Error is a procedure failure with a wire code. Err is kept for logging and
// is never sent to the client.
type Error struct {
	Code       Code
	Message    string
	Err        error
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// ToError converts any error returned by a procedure into an *Error.
// FieldErrors become BAD_REQUEST, missing authentication becomes UNAUTHORIZED
// and everything unrecognized becomes INTERNAL_SERVER_ERROR with a generic message.
func ToError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	var fieldErr apiutil.FieldError
	if errors.As(err, &fieldErr) {
		return NewError(CodeBadRequest, fieldErr.Error(), err)
	}
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return NewError(CodeUnauthorized, "Authentication required", err)
	case errors.Is(err, authz.ErrForbidden):
		return NewError(CodeForbidden, "Forbidden", err)
	}
	return NewError(CodeInternalServerError, "Internal server error", err)
}

// RetryAfterSeconds formats d for a Retry-After header, rounding up to whole seconds.
func RetryAfterSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
