package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. User-facing wording
	// comes from the shared taxonomy so API responses and chat error
	// messages stay consistent.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrAuth), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, domain.UserMessage(domain.ErrAuth)
	case errors.Is(err, domain.ErrAccountDeactivated):
		return http.StatusForbidden, domain.UserMessage(err)
	case errors.Is(err, domain.ErrProviderForbidden):
		return http.StatusForbidden, domain.ErrProviderForbidden.Error()
	case errors.Is(err, domain.ErrThreadNotFound):
		return http.StatusNotFound, "thread not found"
	case errors.Is(err, domain.ErrTurnInFlight):
		return http.StatusConflict, domain.ErrTurnInFlight.Error()
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, domain.ErrEmptyMessage.Error()
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, domain.UserMessage(err)
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, domain.UserMessage(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
