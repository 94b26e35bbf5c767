package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sanadcare/admin-console/docs"
	"github.com/sanadcare/admin-console/internal/api/handler"
	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/permission"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/core/service"
	"github.com/sanadcare/admin-console/internal/infrastructure/flash"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// usersPage is served like the mapped pages but has no permission of its own.
const usersPage = "/users"

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Session middleware.SessionConfig
	Storage ports.StorageProvider
	Auth    ports.AuthGateway
	API     ports.ResourceGateway
	Catalog *i18n.Catalog
	Audit   ports.AuditRecorder
	Checks  map[string]handler.Check
	Log     zerolog.Logger
	Metrics bool
	Swagger bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Catalog, d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.Metrics {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace: "console",
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// --- Probes and docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	if d.Metrics {
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Browser routes ---
	sessionCfg := d.Session
	sessionCfg.Storage = d.Storage
	sessionCfg.Restore = func(ctx context.Context, store ports.Storage) (ports.Session, error) {
		return service.RestoreSession(ctx, store, service.SessionDeps{
			Gateway:       d.Auth,
			Translator:    d.Catalog,
			DefaultLocale: d.Catalog.Fallback(),
			Log:           d.Log,
		})
	}
	sessionCfg.Notifier = func(store ports.Storage) ports.Notifier { return flash.New(store) }
	sessionCfg.Log = d.Log

	browser := e.Group("", middleware.Session(sessionCfg))
	guard := middleware.NewGuard(middleware.GuardConfig{
		Permissions: permission.Default(),
		Translator:  d.Catalog,
		Audit:       d.Audit,
		Log:         d.Log,
	})
	guarded := guard.Path()

	authHandler := handler.NewAuthHandler(d.Catalog, d.Audit, d.Log)
	browser.GET(domain.RouteLogin, authHandler.LoginPage, guarded)
	browser.POST(domain.RouteLogin, authHandler.Login, guarded)
	browser.GET(domain.RouteForgot, authHandler.ForgotPage, guarded)
	browser.POST(domain.RouteForgot, authHandler.Forgot, guarded)
	browser.GET(domain.RouteOTP, authHandler.OTPPage, guarded)
	browser.POST(domain.RouteOTP, authHandler.VerifyCode, guarded)
	browser.GET(domain.RouteResetPassword, authHandler.ResetPasswordPage, guarded)
	browser.POST(domain.RouteResetPassword, authHandler.ResetPassword, guarded)
	browser.POST("/logout", authHandler.Logout)

	localeHandler := handler.NewLocaleHandler(d.Catalog, d.Log)
	browser.POST("/locale", localeHandler.Switch)

	pageHandler := handler.NewPageHandler(d.API, d.Catalog, d.Log)
	browser.GET(domain.RouteHome, pageHandler.Home, guarded)
	browser.GET(domain.RouteMyAccount, pageHandler.MyAccount, guarded)
	browser.PUT(domain.RouteMyAccount, pageHandler.UpdateProfile, guard.Page(domain.RouteMyAccount))

	notifications := browser.Group(domain.RouteNotifications, guard.Page(domain.RouteNotifications))
	notifications.GET("", pageHandler.Notifications)
	notifications.PATCH("/mark-all-read", pageHandler.MarkAllNotificationsRead)
	notifications.PATCH("/:id/read", pageHandler.MarkNotificationRead)
	notifications.DELETE("/:id", pageHandler.DeleteNotification)

	for _, page := range resourcePages() {
		h := handler.NewResourceHandler(page, d.API, d.Catalog, d.Log)
		g := browser.Group(page, guard.Page(page))
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Show)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
		g.PATCH("/:id/toggle-status", h.ToggleStatus)

		for _, a := range pageActions[page] {
			g.Add(a.method, a.route, h.Action(a.method, a.name, a.fallback))
		}
	}

	// Unknown paths still go through the guard so a logged-out browser is
	// sent to /login rather than shown a 404.
	browser.RouteNotFound("/*", echo.NotFoundHandler, guarded)

	return e
}

// pageAction is an extra upstream call offered by one resource page.
type pageAction struct {
	method   string
	route    string
	name     string
	fallback string
}

var pageActions = map[string][]pageAction{
	"/doctors": {
		{method: http.MethodPut, route: "/:id/verify", name: "verify", fallback: i18n.MsgDoctorVerified},
		{method: http.MethodPut, route: "/:id/reject", name: "reject", fallback: i18n.MsgDoctorRejected},
	},
	"/permissions": {
		{method: http.MethodPost, route: "/update", name: "update", fallback: i18n.MsgPermissionsSynced},
	},
}

// resourcePages lists every CRUD page: the permission-mapped pages that are
// not plain always-accessible views, plus /users.
func resourcePages() []string {
	pages := []string{usersPage}
	for _, p := range permission.Paths() {
		if permission.AlwaysAccessible(p) {
			continue
		}
		pages = append(pages, p)
	}
	return pages
}

// AuditInvalidations records a session_invalidated event whenever the
// gateway tears a session down.
func AuditInvalidations(rec ports.AuditRecorder) func(ctx context.Context, status int, path string) {
	return func(ctx context.Context, status int, path string) {
		rec.Record(domain.AuditEvent{
			SessionID: middleware.SessionIDFrom(ctx),
			Kind:      domain.AuditSessionInvalidated,
			Path:      path,
			Detail:    strconv.Itoa(status),
			At:        time.Now().UTC(),
		})
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
