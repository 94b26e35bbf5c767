package handler

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// pageResponse is what every page navigation renders.
type pageResponse struct {
	Page          string                `json:"page"`
	Data          json.RawMessage       `json:"data,omitempty"`
	Meta          json.RawMessage       `json:"meta,omitempty"`
	Message       string                `json:"message,omitempty"`
	Email         string                `json:"email,omitempty"`
	Notifications []domain.Notification `json:"notifications"`
	User          *domain.Principal     `json:"user,omitempty"`
	Locale        string                `json:"locale"`
}

// browser bundles what the Session middleware bound for this request.
type browser struct {
	session  ports.Session
	notifier ports.Notifier
}

// ctxBrowser fails fast when the Session middleware did not run.
func ctxBrowser(c echo.Context) (browser, error) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return browser{}, echo.NewHTTPError(http.StatusInternalServerError, "missing session")
	}
	n, ok := middleware.NotifierFrom(c)
	if !ok {
		return browser{}, echo.NewHTTPError(http.StatusInternalServerError, "missing notifier")
	}
	return browser{session: sess, notifier: n}, nil
}

// render drains the browser's notifications into a page response.
func (b browser) render(c echo.Context, log zerolog.Logger, page pageResponse) error {
	pending, err := b.notifier.Drain(c.Request().Context())
	if err != nil {
		log.Warn().Err(err).Msg("failed to drain notifications")
		pending = []domain.Notification{}
	}

	page.Notifications = pending
	page.User = b.session.User()
	page.Locale = b.session.Locale()
	return c.JSON(http.StatusOK, page)
}

// notify queues a localized toast. Queue failures are logged, never returned.
func (b browser) notify(c echo.Context, log zerolog.Logger, tr ports.Translator, kind domain.NotificationKind, message string) {
	title := i18n.MsgSuccessTitle
	switch kind {
	case domain.NotifyError:
		title = i18n.MsgErrorTitle
	case domain.NotifyWarning, domain.NotifyInfo:
		title = ""
	}

	n := domain.Notification{Kind: kind, Message: message}
	if title != "" {
		n.Title = tr.T(b.session.Locale(), title)
	}
	if err := b.notifier.Notify(c.Request().Context(), n); err != nil {
		log.Warn().Err(err).Msg("failed to queue notification")
	}
}

// notifyOutcome turns a session action's outcome into a toast.
func (b browser) notifyOutcome(c echo.Context, log zerolog.Logger, tr ports.Translator, out domain.Outcome) {
	kind := domain.NotifySuccess
	if !out.OK() {
		kind = domain.NotifyError
	}
	b.notify(c, log, tr, kind, out.Message)
}

func (b browser) t(tr ports.Translator, key string, args ...any) string {
	return tr.T(b.session.Locale(), key, args...)
}

func (b browser) userID() int64 {
	if u := b.session.User(); u != nil {
		return u.ID
	}
	return 0
}
