package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/ports"
)

// Context keys set by Session.
const (
	ContextKeySession   = "session"
	ContextKeyNotifier  = "notifier"
	ContextKeySessionID = "session_id"
)

// SessionConfig wires the session middleware.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool

	Storage ports.StorageProvider
	// Restore rebuilds the session from a browser's storage scope.
	Restore func(ctx context.Context, store ports.Storage) (ports.Session, error)
	// Notifier returns the flash queue of a storage scope.
	Notifier func(store ports.Storage) ports.Notifier
	Log      zerolog.Logger
}

type sessionIDKey struct{}

// Session identifies the browser from its signed cookie, issuing a fresh id
// when the cookie is missing, expired or forged, and binds the browser's
// session and notification queue to the request. The cookie's expiry slides
// forward on every request.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := readSessionID(c, cfg)
			if !ok {
				sid = uuid.NewString()
			}
			if err := writeSessionCookie(c, cfg, sid); err != nil {
				return err
			}

			ctx := c.Request().Context()
			store := cfg.Storage.Scope(sid)
			sess, err := cfg.Restore(ctx, store)
			if err != nil {
				return err
			}

			ctx = ports.WithCredentials(ctx, sess)
			ctx = context.WithValue(ctx, sessionIDKey{}, sid)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set(ContextKeySessionID, sid)
			c.Set(ContextKeySession, sess)
			c.Set(ContextKeyNotifier, cfg.Notifier(store))

			return next(c)
		}
	}
}

func readSessionID(c echo.Context, cfg SessionConfig) (string, bool) {
	cookie, err := c.Cookie(cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	tkn, err := jwt.ParseWithClaims(cookie.Value, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil || !tkn.Valid {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			cfg.Log.Debug().Err(err).Msg("session cookie rejected")
		}
		return "", false
	}

	sc, ok := tkn.Claims.(*sessionClaims)
	if !ok || sc.SessionID == "" {
		return "", false
	}
	return sc.SessionID, true
}

// sessionClaims is the cookie payload. The browser only ever holds the id;
// credentials stay server side.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func writeSessionCookie(c echo.Context, cfg SessionConfig, sid string) error {
	now := time.Now()
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	})
	signed, err := tkn.SignedString([]byte(cfg.Secret))
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(cfg.TTL),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionFrom returns the session bound by Session.
func SessionFrom(c echo.Context) (ports.Session, bool) {
	s, ok := c.Get(ContextKeySession).(ports.Session)
	return s, ok
}

// NotifierFrom returns the flash queue bound by Session.
func NotifierFrom(c echo.Context) (ports.Notifier, bool) {
	n, ok := c.Get(ContextKeyNotifier).(ports.Notifier)
	return n, ok
}

// SessionIDFrom returns the browser session id carried by ctx.
func SessionIDFrom(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey{}).(string)
	return sid
}
