// Package apierror defines the error taxonomy shared by every service.
// Errors cross a service boundary only as an HTTP status code and a JSON
// error body; the kind determines the status.
package apierror

import "net/http"

type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindAuth
	KindUpstreamTimeout
	KindUpstreamUnavailable
	KindInternal
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind and a client-facing message. Internal detail
// stays in server-side logs; the message is what the caller sees.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func UpstreamTimeout(msg string) *Error {
	return &Error{Kind: KindUpstreamTimeout, Message: msg}
}

func UpstreamUnavailable(msg string) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}
