package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/api/metrics"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/guard"
	"github.com/sanadcare/admin-console/internal/core/permission"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// GuardConfig wires the navigation guard.
type GuardConfig struct {
	Permissions permission.Map
	Translator  ports.Translator
	Audit       ports.AuditRecorder
	Log         zerolog.Logger
}

// Guard runs the navigation rules before a page handler. It must be mounted
// after Session.
type Guard struct {
	cfg GuardConfig
}

// NewGuard returns a Guard.
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{cfg: cfg}
}

// Path guards the request path itself.
func (g *Guard) Path() echo.MiddlewareFunc {
	return g.middleware(func(c echo.Context) string { return c.Request().URL.Path })
}

// Page guards every route of a resource page (its items, edits and toggles)
// as a navigation to page.
func (g *Guard) Page(page string) echo.MiddlewareFunc {
	return g.middleware(func(echo.Context) string { return page })
}

func (g *Guard) middleware(target func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := SessionFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware not mounted")
			}

			path := target(c)
			d := guard.Evaluate(path, sess, g.cfg.Permissions)
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Reason), strconv.FormatBool(d.Allow)).Inc()

			if d.Allow {
				return next(c)
			}

			if d.Denied {
				g.denied(c, sess, path, d)
			}
			g.cfg.Log.Debug().
				Str("path", path).
				Str("reason", string(d.Reason)).
				Str("redirect", d.Redirect).
				Msg("navigation redirected")

			return c.Redirect(RedirectStatus(c), d.Redirect)
		}
	}
}

func (g *Guard) denied(c echo.Context, sess ports.Session, path string, d guard.Decision) {
	ctx := c.Request().Context()
	locale := sess.Locale()

	if n, ok := NotifierFrom(c); ok {
		err := n.Notify(ctx, domain.Notification{
			Kind:    domain.NotifyError,
			Title:   g.cfg.Translator.T(locale, i18n.MsgAccessDeniedTitle),
			Message: g.cfg.Translator.T(locale, i18n.MsgAccessDenied),
		})
		if err != nil {
			g.cfg.Log.Warn().Err(err).Msg("failed to queue access denied notification")
		}
	}

	event := domain.AuditEvent{
		SessionID: SessionIDFrom(ctx),
		Kind:      domain.AuditAccessDenied,
		Path:      path,
		Detail:    string(d.Permission),
		At:        time.Now().UTC(),
	}
	if u := sess.User(); u != nil {
		event.UserID = u.ID
	}
	g.cfg.Audit.Record(event)
}

// RedirectStatus is 302 for page loads and 303 after a form submission.
func RedirectStatus(c echo.Context) int {
	switch c.Request().Method {
	case http.MethodGet, http.MethodHead:
		return http.StatusFound
	}
	return http.StatusSeeOther
}
