package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/api/handler"
	"github.com/galacash/gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  any    `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders session loss as 401 SESSION_EXPIRED with a sign-in redirect.
//   - Passes backend errors through with their status, code and details.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Checked first: a refresh failure arrives joined with the backend error.
	if errors.Is(err, domain.ErrSessionExpired) {
		return http.StatusUnauthorized, errorResponse{
			Error:    "session expired, please sign in again",
			Code:     domain.CodeSessionExpired,
			Redirect: handler.SignInPath,
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	if apiErr, ok := domain.AsAPIError(err); ok {
		status := apiErr.StatusCode
		if apiErr.Code == domain.CodeNetworkError || status == 0 {
			status = http.StatusBadGateway
		}
		if status >= http.StatusInternalServerError {
			log.Warn().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("backend failure")
		}
		return status, errorResponse{Error: apiErr.Message, Code: apiErr.Code, Details: apiErr.Details}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUnsupportedUpload):
		return http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a fallback message for
	// the resource being served.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: fallbackMessage(c.Path())}
}

var fallbackMessages = []struct {
	prefix string
	msg    string
}{
	{"/v1/bendahara/fund-applications", "failed to process fund applications"},
	{"/v1/bendahara/cash-bills", "failed to process cash bills"},
	{"/v1/bendahara/rekap-kas", "failed to load cash recap"},
	{"/v1/bendahara", "failed to load treasurer data"},
	{"/v1/transactions", "failed to load transactions"},
	{"/v1/cash-bills", "failed to process cash bills"},
	{"/v1/fund-applications", "failed to process fund applications"},
	{"/v1/dashboard", "failed to load dashboard"},
	{"/v1/user", "failed to update profile"},
	{"/v1/auth", "authentication failed"},
}

func fallbackMessage(path string) string {
	for _, f := range fallbackMessages {
		if strings.HasPrefix(path, f.prefix) {
			return f.msg
		}
	}
	return "internal server error"
}
