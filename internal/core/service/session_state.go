package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// SessionState is the authentication state of one browser. It is rebuilt from
// the browser's storage scope at the start of every request and writes every
// change through to that scope.
type SessionState struct {
	mu      sync.RWMutex
	current domain.Session

	store         ports.Storage
	gateway       ports.AuthGateway
	tr            ports.Translator
	defaultLocale string
	log           zerolog.Logger
}

// SessionDeps are the collaborators shared by every browser's session.
type SessionDeps struct {
	Gateway    ports.AuthGateway
	Translator ports.Translator
	// DefaultLocale applies while the browser has not stored a choice.
	DefaultLocale string
	Log           zerolog.Logger
}

var _ ports.Session = (*SessionState)(nil)

// RestoreSession loads the session persisted in store. Unreadable user or
// permission entries are treated as absent.
func RestoreSession(ctx context.Context, store ports.Storage, deps SessionDeps) (*SessionState, error) {
	values, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	log := deps.Log
	s := &SessionState{
		store:         store,
		gateway:       deps.Gateway,
		tr:            deps.Translator,
		defaultLocale: deps.DefaultLocale,
		log:           log,
	}
	s.current = domain.Session{
		Token:       values[domain.KeyToken],
		ResetToken:  values[domain.KeyResetToken],
		Locale:      values[domain.KeyLocale],
		Permissions: map[domain.PermissionKey]struct{}{},
	}

	if raw := values[domain.KeyUser]; raw != "" {
		var user domain.Principal
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			log.Warn().Err(err).Msg("stored user is unreadable, ignoring")
		} else {
			s.current.User = &user
		}
	}

	if raw := values[domain.KeyPermissions]; raw != "" {
		var keys []domain.PermissionKey
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			log.Warn().Err(err).Msg("stored permissions are unreadable, ignoring")
		} else {
			s.current.Permissions = domain.PermissionSet(keys)
		}
	}

	return s, nil
}

// --- read side ---

func (s *SessionState) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsLoggedIn()
}

func (s *SessionState) IsResetAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsResetAuthorized()
}

func (s *SessionState) HasPermission(key domain.PermissionKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.HasPermission(key)
}

func (s *SessionState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *SessionState) ResetToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.ResetToken
}

// Locale is the stored locale, or the default when the browser never chose one.
func (s *SessionState) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Locale == "" {
		return s.defaultLocale
	}
	return s.current.Locale
}

func (s *SessionState) User() *domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User
}

// Snapshot returns a copy that is safe to hand to the guard or a template.
func (s *SessionState) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.current
	if snap.Locale == "" {
		snap.Locale = s.defaultLocale
	}
	snap.Permissions = make(map[domain.PermissionKey]struct{}, len(s.current.Permissions))
	for k := range s.current.Permissions {
		snap.Permissions[k] = struct{}{}
	}
	return snap
}

// --- actions ---

// Login authenticates against the upstream and, on success, replaces token,
// user and permissions in one write. A failed login leaves the session as it was.
func (s *SessionState) Login(ctx context.Context, in ports.LoginInput) (*domain.Principal, domain.Outcome) {
	res, err := s.gateway.Login(ctx, in)
	if err != nil {
		s.log.Info().Err(err).Msg("login rejected")
		return nil, domain.Failed(domain.MessageOf(err, s.t(i18n.MsgLoginFailed)), err)
	}
	if res.Token == "" || res.Admin == nil {
		err := fmt.Errorf("login: upstream returned no token or admin")
		return nil, domain.Failed(s.t(i18n.MsgLoginFailed), err)
	}

	perms := domain.FlattenPermissions(res.Admin)
	userJSON, err := json.Marshal(res.Admin)
	if err != nil {
		return nil, domain.Failed(s.t(i18n.MsgRequestFailed), fmt.Errorf("login: encode user: %w", err))
	}
	permsJSON, err := json.Marshal(perms)
	if err != nil {
		return nil, domain.Failed(s.t(i18n.MsgRequestFailed), fmt.Errorf("login: encode permissions: %w", err))
	}

	s.mu.Lock()
	err = s.store.Set(ctx, map[string]string{
		domain.KeyToken:       res.Token,
		domain.KeyUser:        string(userJSON),
		domain.KeyPermissions: string(permsJSON),
	})
	if err == nil {
		s.current.Token = res.Token
		s.current.User = res.Admin
		s.current.Permissions = domain.PermissionSet(perms)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, domain.Failed(s.t(i18n.MsgRequestFailed), fmt.Errorf("login: persist session: %w", err))
	}

	msg := res.Message
	if msg == "" {
		msg = s.t(i18n.MsgWelcomeBack, res.Admin.Name)
	}
	return res.Admin, domain.Succeeded(msg, domain.RouteHome)
}

// Logout tells the upstream and always clears the local session, even when the
// upstream is unreachable; a failed call only changes the message.
func (s *SessionState) Logout(ctx context.Context) domain.Outcome {
	msg, callErr := s.gateway.Logout(ctx)

	if err := s.clearLogin(ctx); err != nil {
		return domain.Outcome{
			Kind:     domain.OutcomeFailure,
			Message:  s.t(i18n.MsgRequestFailed),
			Redirect: domain.RouteLogin,
			Err:      err,
		}
	}

	if callErr != nil {
		s.log.Warn().Err(callErr).Msg("upstream logout failed, session cleared locally")
		return domain.Outcome{
			Kind:     domain.OutcomeFailure,
			Message:  s.t(i18n.MsgLogoutFailed),
			Redirect: domain.RouteLogin,
			Err:      callErr,
		}
	}

	if msg == "" {
		msg = s.t(i18n.MsgLoggedOut)
	}
	return domain.Succeeded(msg, domain.RouteLogin)
}

// ClearAuthData drops every credential without calling the upstream. The
// gateway calls it when the upstream answers 401 or 403.
func (s *SessionState) ClearAuthData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Token = ""
	s.current.ResetToken = ""
	s.current.User = nil
	s.current.Permissions = map[domain.PermissionKey]struct{}{}

	if err := s.store.Remove(ctx, domain.AuthKeys...); err != nil {
		return fmt.Errorf("clear auth data: %w", err)
	}
	return nil
}

// clearLogin is the logout teardown: the reset token is left alone.
func (s *SessionState) clearLogin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Token = ""
	s.current.User = nil
	s.current.Permissions = map[domain.PermissionKey]struct{}{}

	if err := s.store.Remove(ctx, domain.KeyToken, domain.KeyUser, domain.KeyPermissions); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RequestPasswordReset asks the upstream to mail a reset code. On success the
// browser moves on to the code entry page.
func (s *SessionState) RequestPasswordReset(ctx context.Context, email string) domain.Outcome {
	msg, err := s.gateway.RequestResetCode(ctx, email)
	if err != nil {
		return domain.Failed(domain.MessageOf(err, s.t(i18n.MsgRequestFailed)), err)
	}
	if msg == "" {
		msg = s.t(i18n.MsgResetCodeSent)
	}
	return domain.Succeeded(msg, withEmail(domain.RouteOTP, email))
}

// ConfirmResetCode verifies the mailed code. The reset token is stored only
// when the upstream issued one; otherwise the current one is kept.
func (s *SessionState) ConfirmResetCode(ctx context.Context, email, code string) domain.Outcome {
	res, err := s.gateway.VerifyResetCode(ctx, email, code)
	if err != nil {
		return domain.Failed(domain.MessageOf(err, s.t(i18n.MsgRequestFailed)), err)
	}

	if res.ResetToken != "" {
		s.mu.Lock()
		err := s.store.Set(ctx, map[string]string{domain.KeyResetToken: res.ResetToken})
		if err == nil {
			s.current.ResetToken = res.ResetToken
		}
		s.mu.Unlock()
		if err != nil {
			return domain.Failed(s.t(i18n.MsgRequestFailed), fmt.Errorf("confirm reset code: %w", err))
		}
	}

	msg := res.Message
	if msg == "" {
		msg = s.t(i18n.MsgResetCodeVerified)
	}
	return domain.Succeeded(msg, withEmail(domain.RouteResetPassword, email))
}

// ChangePassword completes the reset flow. Unlike the other actions its
// failure is meant to reach the caller: Outcome.Err is always set on failure.
func (s *SessionState) ChangePassword(ctx context.Context, in ports.PasswordChangeInput) domain.Outcome {
	msg, err := s.gateway.ResetPassword(ctx, in)
	if err != nil {
		return domain.Failed(domain.MessageOf(err, s.t(i18n.MsgRequestFailed)), err)
	}

	s.mu.Lock()
	err = s.store.Remove(ctx, domain.KeyResetToken)
	if err == nil {
		s.current.ResetToken = ""
	}
	s.mu.Unlock()
	if err != nil {
		return domain.Failed(s.t(i18n.MsgRequestFailed), fmt.Errorf("change password: %w", err))
	}

	if msg == "" {
		msg = s.t(i18n.MsgPasswordChanged)
	}
	return domain.Succeeded(msg, domain.RouteLogin)
}

// SetLocale persists the browser's locale choice.
func (s *SessionState) SetLocale(ctx context.Context, locale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, map[string]string{domain.KeyLocale: locale}); err != nil {
		return fmt.Errorf("set locale: %w", err)
	}
	s.current.Locale = locale
	return nil
}

func (s *SessionState) t(key string, args ...any) string {
	return s.tr.T(s.Locale(), key, args...)
}

func withEmail(route, email string) string {
	return route + "?" + url.Values{"email": {email}}.Encode()
}
