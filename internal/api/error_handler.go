package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freshproduce/marketplace/internal/api/handler"
	"github.com/freshproduce/marketplace/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs every error, at warn level for 4xx and error level for 5xx.
//   - Renders the standard envelope without leaking internal causes.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)

		event := log.Warn()
		if code >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(err).
			Int("status", code).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("request failed")

		body := handler.ErrorEnvelope(code, msg)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code >= http.StatusInternalServerError {
			return he.Code, "internal server error"
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	return statusOf(domain.KindOf(err)), domain.MessageOf(err)
}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindDuplicateEmail:
		return http.StatusBadRequest
	case domain.KindInvalidCredentials, domain.KindUnauthorized, domain.KindInvalidToken:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
