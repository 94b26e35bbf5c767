package middleware

import (
	"context"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

// stubSession is a fixed session; actions are not used by the middleware.
type stubSession struct {
	token       string
	resetToken  string
	locale      string
	user        *domain.Principal
	permissions map[domain.PermissionKey]struct{}
}

func (s *stubSession) Token() string                         { return s.token }
func (s *stubSession) ResetToken() string                    { return s.resetToken }
func (s *stubSession) Locale() string                        { return s.locale }
func (s *stubSession) ClearAuthData(_ context.Context) error { s.token = ""; return nil }
func (s *stubSession) IsLoggedIn() bool                      { return s.token != "" }
func (s *stubSession) IsResetAuthorized() bool               { return s.resetToken != "" }
func (s *stubSession) User() *domain.Principal               { return s.user }

func (s *stubSession) HasPermission(key domain.PermissionKey) bool {
	_, ok := s.permissions[key]
	return ok
}

func (s *stubSession) Snapshot() domain.Session {
	return domain.Session{Token: s.token, ResetToken: s.resetToken, Locale: s.locale, User: s.user, Permissions: s.permissions}
}

func (s *stubSession) Login(context.Context, ports.LoginInput) (*domain.Principal, domain.Outcome) {
	return nil, domain.Outcome{}
}
func (s *stubSession) Logout(context.Context) domain.Outcome { return domain.Outcome{} }
func (s *stubSession) RequestPasswordReset(context.Context, string) domain.Outcome {
	return domain.Outcome{}
}
func (s *stubSession) ConfirmResetCode(context.Context, string, string) domain.Outcome {
	return domain.Outcome{}
}
func (s *stubSession) ChangePassword(context.Context, ports.PasswordChangeInput) domain.Outcome {
	return domain.Outcome{}
}
func (s *stubSession) SetLocale(_ context.Context, locale string) error {
	s.locale = locale
	return nil
}

type recordedAudit struct {
	events []domain.AuditEvent
}

func (r *recordedAudit) Record(e domain.AuditEvent) { r.events = append(r.events, e) }
