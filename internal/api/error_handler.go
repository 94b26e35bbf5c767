package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/api/handler"
	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends the browser to /login once the upstream rejected its session.
//   - Maps known domain and upstream errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(tr ports.Translator, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrUnauthenticated) && c.Request().URL.Path != domain.RouteLogin {
			sessionExpired(c, tr, log)
			_ = c.Redirect(middleware.RedirectStatus(c), domain.RouteLogin)
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, handler.ErrorResponse{Error: msg})
	}
}

func sessionExpired(c echo.Context, tr ports.Translator, log zerolog.Logger) {
	n, ok := middleware.NotifierFrom(c)
	if !ok {
		return
	}
	locale := ""
	if sess, ok := middleware.SessionFrom(c); ok {
		locale = sess.Locale()
	}
	err := n.Notify(c.Request().Context(), domain.Notification{
		Kind:    domain.NotifyError,
		Title:   tr.T(locale, i18n.MsgErrorTitle),
		Message: tr.T(locale, i18n.MsgSessionExpired),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to queue session expired notification")
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if errors.Is(err, domain.ErrValidation) {
		return http.StatusUnprocessableEntity, err.Error()
	}

	if errors.Is(err, domain.ErrUpstreamUnreachable) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unreachable")
		return http.StatusBadGateway, "upstream service unavailable"
	}

	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		msg := ue.Error()
		if ue.Status >= http.StatusInternalServerError {
			log.Warn().Err(err).Int("upstream_status", ue.Status).Str("path", c.Path()).Msg("upstream failure")
			return http.StatusBadGateway, "upstream service unavailable"
		}
		return ue.Status, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
