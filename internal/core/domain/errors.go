package domain

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned once the upstream rejected the session
	// with 401 or 403; the session has already been torn down.
	ErrUnauthenticated = errors.New("session is no longer authenticated")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	// ErrUpstreamUnreachable is a network failure talking to the upstream API.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// UpstreamError is a non-2xx answer from the upstream REST API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return "upstream responded " + http.StatusText(e.Status)
	}
	return e.Message
}

// Unwrap lets errors.Is match ErrUnauthenticated and ErrNotFound.
func (e *UpstreamError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// MessageOf extracts a user-presentable message from err, or returns fallback.
func MessageOf(err error, fallback string) string {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}
