package handler

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/infrastructure/flash"
	"github.com/sanadcare/admin-console/internal/infrastructure/storage/memstore"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

type stubSession struct {
	token  string
	locale string
	user   *domain.Principal

	loginFn   func(ctx context.Context, in ports.LoginInput) (*domain.Principal, domain.Outcome)
	logoutFn  func(ctx context.Context) domain.Outcome
	requestFn func(ctx context.Context, email string) domain.Outcome
	confirmFn func(ctx context.Context, email, code string) domain.Outcome
	changeFn  func(ctx context.Context, in ports.PasswordChangeInput) domain.Outcome
}

func (s *stubSession) Token() string                               { return s.token }
func (s *stubSession) ResetToken() string                          { return "" }
func (s *stubSession) Locale() string                              { return s.locale }
func (s *stubSession) ClearAuthData(context.Context) error         { return nil }
func (s *stubSession) IsLoggedIn() bool                            { return s.token != "" }
func (s *stubSession) IsResetAuthorized() bool                     { return false }
func (s *stubSession) HasPermission(domain.PermissionKey) bool     { return true }
func (s *stubSession) User() *domain.Principal                     { return s.user }
func (s *stubSession) Snapshot() domain.Session                    { return domain.Session{Token: s.token} }
func (s *stubSession) SetLocale(_ context.Context, l string) error { s.locale = l; return nil }

func (s *stubSession) Login(ctx context.Context, in ports.LoginInput) (*domain.Principal, domain.Outcome) {
	return s.loginFn(ctx, in)
}

func (s *stubSession) Logout(ctx context.Context) domain.Outcome { return s.logoutFn(ctx) }

func (s *stubSession) RequestPasswordReset(ctx context.Context, email string) domain.Outcome {
	return s.requestFn(ctx, email)
}

func (s *stubSession) ConfirmResetCode(ctx context.Context, email, code string) domain.Outcome {
	return s.confirmFn(ctx, email, code)
}

func (s *stubSession) ChangePassword(ctx context.Context, in ports.PasswordChangeInput) domain.Outcome {
	return s.changeFn(ctx, in)
}

type stubResources struct {
	listFn   func(ctx context.Context, path string, query url.Values) (*ports.Envelope, error)
	showFn   func(ctx context.Context, path, id string) (*ports.Envelope, error)
	createFn func(ctx context.Context, path string, body json.RawMessage) (*ports.Envelope, error)
	updateFn func(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error)
	deleteFn func(ctx context.Context, path, id string) (*ports.Envelope, error)
	toggleFn func(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error)

	performed []ports.Action
	performFn func(ctx context.Context, a ports.Action) (*ports.Envelope, error)
}

func (s *stubResources) List(ctx context.Context, path string, query url.Values) (*ports.Envelope, error) {
	return s.listFn(ctx, path, query)
}

func (s *stubResources) Show(ctx context.Context, path, id string) (*ports.Envelope, error) {
	return s.showFn(ctx, path, id)
}

func (s *stubResources) Create(ctx context.Context, path string, body json.RawMessage) (*ports.Envelope, error) {
	return s.createFn(ctx, path, body)
}

func (s *stubResources) Update(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error) {
	return s.updateFn(ctx, path, id, body)
}

func (s *stubResources) Delete(ctx context.Context, path, id string) (*ports.Envelope, error) {
	return s.deleteFn(ctx, path, id)
}

func (s *stubResources) ToggleStatus(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error) {
	return s.toggleFn(ctx, path, id, body)
}

func (s *stubResources) Perform(ctx context.Context, a ports.Action) (*ports.Envelope, error) {
	s.performed = append(s.performed, a)
	return s.performFn(ctx, a)
}

type recordedAudit struct {
	events []domain.AuditEvent
}

func (r *recordedAudit) Record(e domain.AuditEvent) { r.events = append(r.events, e) }

var testCatalog = i18n.New("en")

// bindBrowser attaches sess and a fresh flash queue the way the Session
// middleware does.
func bindBrowser(c echo.Context, sess ports.Session) *flash.Queue {
	q := flash.New(memstore.New().Scope("sid"))
	c.Set(middleware.ContextKeySession, sess)
	c.Set(middleware.ContextKeyNotifier, q)
	return q
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}
