package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Vote pipeline
	ErrMalformedMessage = fmt.Errorf("malformed message")
	ErrUnauthenticated  = fmt.Errorf("unauthenticated")
	ErrPollNotFound     = fmt.Errorf("poll not found")
	ErrOptionNotFound   = fmt.Errorf("option not found")
	ErrDuplicateVote    = fmt.Errorf("user already voted on this poll")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrInvalidPoll      = fmt.Errorf("invalid poll")

	// Live connections
	ErrConnectionClosed    = fmt.Errorf("connection closed")
	ErrConnectionSaturated = fmt.Errorf("connection outbound queue is full")

	// Accounts
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrTokenGeneration    = fmt.Errorf("could not generate token")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
)

// Is re-exports the standard library helper so callers only import one errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As re-exports the standard library helper.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// MapToHTTPStatus translates a domain error into the status code returned by the HTTP surface.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrInvalidPoll), Is(err, ErrInvalidPassword),
		Is(err, ErrInvalidRequest), Is(err, ErrMalformedMessage):
		return http.StatusBadRequest
	case Is(err, ErrUnauthenticated), Is(err, ErrInvalidCredentials), Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case Is(err, ErrPollNotFound), Is(err, ErrOptionNotFound), Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case Is(err, ErrUserAlreadyExists), Is(err, ErrDuplicateVote):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
