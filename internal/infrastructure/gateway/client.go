// Package gateway is the console's client for the upstream REST API. It
// authorizes every request from the caller's session and tears that session
// down when the upstream rejects it.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/api/metrics"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Sanad-Admin-Console/1.0"
)

// Upstream endpoints.
const (
	pathLogin           = "/login"
	pathLogout          = "/logout"
	pathResetCode       = "/reset-password-code"
	pathVerifyResetCode = "/verify-reset-code"
	pathResetPassword   = "/reset-password"
)

// InvalidationFunc is told when a session was cleared after a 401/403.
type InvalidationFunc func(ctx context.Context, status int, path string)

// Options configures the client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// DefaultLocale is sent as Accept-Language when no session is bound.
	DefaultLocale string
	Log           zerolog.Logger
	OnInvalidated InvalidationFunc
}

// Client talks to the upstream API on behalf of the session bound to each
// request's context with ports.WithCredentials.
type Client struct {
	http          *resty.Client
	defaultLocale string
	onInvalidated InvalidationFunc
	log           zerolog.Logger
}

var (
	_ ports.AuthGateway     = (*Client)(nil)
	_ ports.ResourceGateway = (*Client)(nil)
)

// apiError is the body of a non-2xx answer.
type apiError struct {
	Message string `json:"message"`
}

// New builds the client. Requests are never retried.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		defaultLocale: opts.DefaultLocale,
		onInvalidated: opts.OnInvalidated,
		log:           opts.Log,
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetError(&apiError{}).
		OnBeforeRequest(c.authorize).
		OnAfterResponse(c.inspect).
		OnError(c.transportFailed)

	return c
}

// authorize runs before the URL is resolved, so r.URL is the endpoint path.
func (c *Client) authorize(_ *resty.Client, r *resty.Request) error {
	creds, ok := ports.CredentialsFrom(r.Context())
	if !ok {
		r.SetHeader("Accept-Language", c.defaultLocale)
		return nil
	}

	locale := creds.Locale()
	if locale == "" {
		locale = c.defaultLocale
	}
	r.SetHeader("Accept-Language", locale)

	path := endpointPath(r.URL)
	switch {
	case path == pathResetPassword:
		if t := creds.ResetToken(); t != "" {
			r.SetAuthToken(t)
		}
	case isAuthFlow(path):
	default:
		if t := creds.Token(); t != "" {
			r.SetAuthToken(t)
		}
	}
	return nil
}

// isAuthFlow reports whether path is an endpoint called without any token.
func isAuthFlow(path string) bool {
	switch path {
	case pathLogin, pathResetCode, pathVerifyResetCode:
		return true
	}
	return false
}

// inspect turns every non-2xx answer into an UpstreamError. A 401 or 403
// additionally clears the caller's session.
func (c *Client) inspect(_ *resty.Client, resp *resty.Response) error {
	req := resp.Request
	metrics.UpstreamRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode())).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(req.Method).Observe(resp.Time().Seconds())

	if !resp.IsError() {
		return nil
	}

	upstreamErr := &domain.UpstreamError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*apiError); ok && body != nil {
		upstreamErr.Message = body.Message
	}

	status := resp.StatusCode()
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return upstreamErr
	}

	// The auth-flow endpoints carry no session token, so their rejections
	// say nothing about the session.
	path := endpointPath(req.URL)
	if isAuthFlow(path) {
		return upstreamErr
	}

	ctx := req.Context()
	if creds, ok := ports.CredentialsFrom(ctx); ok {
		if err := creds.ClearAuthData(ctx); err != nil {
			c.log.Error().Err(err).Str("path", path).Msg("failed to clear session after upstream rejection")
		}
	}
	metrics.SessionInvalidationsTotal.Inc()
	c.log.Info().Int("status", status).Str("path", path).Msg("upstream rejected session, cleared")
	if c.onInvalidated != nil {
		c.onInvalidated(ctx, status, path)
	}
	return upstreamErr
}

func (c *Client) transportFailed(req *resty.Request, err error) {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(req.Method, "error").Inc()
	c.log.Warn().Err(err).Str("method", req.Method).Str("path", endpointPath(req.URL)).Msg("upstream request failed")
}

// classify marks transport failures so callers can tell them from upstream
// answers.
func classify(err error) error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnreachable, err)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// endpointPath strips the base URL and query so it can be compared with the
// endpoint constants.
func endpointPath(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			u = rest[j:]
		} else {
			u = "/"
		}
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return u
}
