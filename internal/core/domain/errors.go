package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the API client.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeTokenExpired   = "TOKEN_EXPIRED"
	CodeInvalidToken   = "INVALID_TOKEN"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeAPIError       = "API_ERROR"
	CodeSessionExpired = "SESSION_EXPIRED"
)

var (
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnsupportedUpload  = errors.New("unsupported upload")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// APIError is the normalized shape of every failed backend call.
type APIError struct {
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsAuth reports whether the error belongs to the authentication family
// that drives the refresh/redirect flow.
func (e *APIError) IsAuth() bool {
	switch e.Code {
	case CodeTokenExpired, CodeInvalidToken, CodeUnauthorized:
		return true
	}
	return false
}

// IsClientError reports a 4xx response.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// AsAPIError unwraps err into an *APIError when it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
