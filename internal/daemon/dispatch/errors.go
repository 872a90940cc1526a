package dispatch

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a command failure on the wire.
type Code string

// Failure codes returned to the frontend.
const (
	CodeInvalidArgs          Code = "invalid_args"
	CodeUnknownCommand       Code = "unknown_command"
	CodePlatformActionFailed Code = "platform_action_failed"
	CodeShellUnavailable     Code = "shell_unavailable"
	CodeInternal             Code = "internal"
)

// Error is the failure descriptor a command returns to the frontend.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the failure code onto a transport status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidArgs:
		return http.StatusBadRequest
	case CodeUnknownCommand:
		return http.StatusNotFound
	case CodePlatformActionFailed:
		return http.StatusBadGateway
	case CodeShellUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WireError normalizes any command error into a wire descriptor.
// Errors that are not already an *Error become internal failures.
func WireError(err error) *Error {
	var wireErr *Error
	if errors.As(err, &wireErr) {
		return wireErr
	}
	return &Error{Code: CodeInternal, Message: err.Error()}
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
