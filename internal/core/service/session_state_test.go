package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/infrastructure/storage/memstore"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

type stubAuthGateway struct {
	loginFn   func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	logoutFn  func(ctx context.Context) (string, error)
	requestFn func(ctx context.Context, email string) (string, error)
	verifyFn  func(ctx context.Context, email, code string) (*ports.ResetCodeResult, error)
	resetFn   func(ctx context.Context, in ports.PasswordChangeInput) (string, error)
}

func (g *stubAuthGateway) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return g.loginFn(ctx, in)
}

func (g *stubAuthGateway) Logout(ctx context.Context) (string, error) {
	if g.logoutFn == nil {
		return "", nil
	}
	return g.logoutFn(ctx)
}

func (g *stubAuthGateway) RequestResetCode(ctx context.Context, email string) (string, error) {
	return g.requestFn(ctx, email)
}

func (g *stubAuthGateway) VerifyResetCode(ctx context.Context, email, code string) (*ports.ResetCodeResult, error) {
	return g.verifyFn(ctx, email, code)
}

func (g *stubAuthGateway) ResetPassword(ctx context.Context, in ports.PasswordChangeInput) (string, error) {
	return g.resetFn(ctx, in)
}

func rolesAdmin() *domain.Principal {
	return &domain.Principal{
		ID:    7,
		Name:  "Mona",
		Email: "mona@example.com",
		Role: &domain.Role{
			ID:          1,
			Name:        "manager",
			Permissions: []domain.Permission{{ID: 3, Name: "roles_index"}},
		},
	}
}

func newTestSession(t *testing.T, store ports.Storage, gw ports.AuthGateway) *SessionState {
	t.Helper()
	s, err := RestoreSession(context.Background(), store, SessionDeps{
		Gateway:       gw,
		Translator:    i18n.New("en"),
		DefaultLocale: "en",
		Log:           zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("RestoreSession returned error: %v", err)
	}
	return s
}

func successfulLogin() *stubAuthGateway {
	return &stubAuthGateway{
		loginFn: func(_ context.Context, _ ports.LoginInput) (*ports.LoginResult, error) {
			return &ports.LoginResult{Admin: rolesAdmin(), Token: "abc"}, nil
		},
	}
}

func TestSessionState_Login_GrantsRolePermissions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid-1")
	s := newTestSession(t, store, successfulLogin())

	user, out := s.Login(ctx, ports.LoginInput{Identifier: "mona@example.com", Password: "pw"})
	if !out.OK() {
		t.Fatalf("expected success, got %+v", out)
	}
	if user == nil || user.ID != 7 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if out.Redirect != domain.RouteHome {
		t.Fatalf("expected redirect to %s, got %s", domain.RouteHome, out.Redirect)
	}
	if out.Message != "Welcome back, Mona!" {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if !s.IsLoggedIn() {
		t.Fatalf("expected logged in")
	}
	if !s.HasPermission("roles_index") {
		t.Fatalf("expected roles_index")
	}
	if s.HasPermission("users_index") {
		t.Fatalf("did not expect users_index")
	}

	// A fresh request for the same browser sees the same session.
	again := newTestSession(t, store, successfulLogin())
	if again.Token() != "abc" || !again.HasPermission("roles_index") || again.User().Name != "Mona" {
		t.Fatalf("restored session differs: %+v", again.Snapshot())
	}
}

func TestSessionState_Login_FailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid-1")
	s := newTestSession(t, store, successfulLogin())
	if _, out := s.Login(ctx, ports.LoginInput{}); !out.OK() {
		t.Fatalf("setup login failed: %+v", out)
	}

	s.gateway = &stubAuthGateway{
		loginFn: func(_ context.Context, _ ports.LoginInput) (*ports.LoginResult, error) {
			return nil, &domain.UpstreamError{Status: http.StatusUnprocessableEntity, Message: "Invalid credentials"}
		},
	}
	user, out := s.Login(ctx, ports.LoginInput{Identifier: "x", Password: "y"})
	if out.OK() || user != nil {
		t.Fatalf("expected failure, got %+v", out)
	}
	if out.Message != "Invalid credentials" {
		t.Fatalf("expected upstream message, got %q", out.Message)
	}
	if s.Token() != "abc" || !s.HasPermission("roles_index") {
		t.Fatalf("failed login changed the session: %+v", s.Snapshot())
	}
}

func TestSessionState_Login_MissingTokenFails(t *testing.T) {
	s := newTestSession(t, memstore.New().Scope("sid"), &stubAuthGateway{
		loginFn: func(_ context.Context, _ ports.LoginInput) (*ports.LoginResult, error) {
			return &ports.LoginResult{Admin: rolesAdmin()}, nil
		},
	})

	_, out := s.Login(context.Background(), ports.LoginInput{})
	if out.OK() {
		t.Fatalf("expected failure without token")
	}
	if out.Message != "Login failed" {
		t.Fatalf("unexpected message %q", out.Message)
	}
	if s.IsLoggedIn() {
		t.Fatalf("must not be logged in")
	}
}

func TestSessionState_Logout_IsUnconditional(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid")
	gw := successfulLogin()
	gw.logoutFn = func(_ context.Context) (string, error) {
		return "", errors.New("connection refused")
	}
	s := newTestSession(t, store, gw)
	_, _ = s.Login(ctx, ports.LoginInput{})
	_ = store.Set(ctx, map[string]string{domain.KeyResetToken: "r1"})
	s.current.ResetToken = "r1"

	out := s.Logout(ctx)
	if out.OK() {
		t.Fatalf("expected failure outcome when upstream is down")
	}
	if out.Redirect != domain.RouteLogin {
		t.Fatalf("expected redirect to login, got %q", out.Redirect)
	}
	if s.IsLoggedIn() || s.User() != nil || s.HasPermission("roles_index") {
		t.Fatalf("local session must be cleared: %+v", s.Snapshot())
	}
	if s.ResetToken() != "r1" {
		t.Fatalf("logout must keep the reset token")
	}
	if _, ok, _ := store.Get(ctx, domain.KeyToken); ok {
		t.Fatalf("token still in storage")
	}
}

func TestSessionState_Logout_Success(t *testing.T) {
	ctx := context.Background()
	gw := successfulLogin()
	gw.logoutFn = func(_ context.Context) (string, error) { return "Bye", nil }
	s := newTestSession(t, memstore.New().Scope("sid"), gw)
	_, _ = s.Login(ctx, ports.LoginInput{})

	out := s.Logout(ctx)
	if !out.OK() || out.Message != "Bye" || out.Redirect != domain.RouteLogin {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestSessionState_ClearAuthData(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid")
	s := newTestSession(t, store, successfulLogin())
	_, _ = s.Login(ctx, ports.LoginInput{})
	_ = s.SetLocale(ctx, "ar")
	_ = store.Set(ctx, map[string]string{domain.KeyResetToken: "r1"})

	if err := s.ClearAuthData(ctx); err != nil {
		t.Fatalf("ClearAuthData returned error: %v", err)
	}

	all, _ := store.All(ctx)
	for _, key := range domain.AuthKeys {
		if _, ok := all[key]; ok {
			t.Fatalf("key %q survived ClearAuthData", key)
		}
	}
	if all[domain.KeyLocale] != "ar" {
		t.Fatalf("locale must survive, got %v", all)
	}
	if s.IsLoggedIn() || s.IsResetAuthorized() || len(s.Snapshot().Permissions) != 0 {
		t.Fatalf("memory not cleared: %+v", s.Snapshot())
	}
}

func TestSessionState_RequestPasswordReset(t *testing.T) {
	s := newTestSession(t, memstore.New().Scope("sid"), &stubAuthGateway{
		requestFn: func(_ context.Context, email string) (string, error) {
			if email != "a+b@example.com" {
				t.Fatalf("unexpected email %q", email)
			}
			return "", nil
		},
	})

	out := s.RequestPasswordReset(context.Background(), "a+b@example.com")
	if !out.OK() {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.Redirect != "/otp?email=a%2Bb%40example.com" {
		t.Fatalf("unexpected redirect %q", out.Redirect)
	}
	if out.Message != "Password reset code sent to your email" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestSessionState_ConfirmResetCode(t *testing.T) {
	ctx := context.Background()
	token := "r1"
	store := memstore.New().Scope("sid")
	s := newTestSession(t, store, &stubAuthGateway{
		verifyFn: func(_ context.Context, _, _ string) (*ports.ResetCodeResult, error) {
			return &ports.ResetCodeResult{ResetToken: token}, nil
		},
	})

	out := s.ConfirmResetCode(ctx, "a@example.com", "123456")
	if !out.OK() || out.Redirect != "/resetpassword?email=a%40example.com" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !s.IsResetAuthorized() {
		t.Fatalf("expected reset authorization")
	}

	// No token in the answer keeps the previous one.
	token = ""
	out = s.ConfirmResetCode(ctx, "a@example.com", "123456")
	if !out.OK() {
		t.Fatalf("expected success, got %+v", out)
	}
	if s.ResetToken() != "r1" {
		t.Fatalf("reset token changed to %q", s.ResetToken())
	}
	if v, _, _ := store.Get(ctx, domain.KeyResetToken); v != "r1" {
		t.Fatalf("stored reset token changed to %q", v)
	}
}

func TestSessionState_ConfirmResetCode_Rejected(t *testing.T) {
	s := newTestSession(t, memstore.New().Scope("sid"), &stubAuthGateway{
		verifyFn: func(_ context.Context, _, _ string) (*ports.ResetCodeResult, error) {
			return nil, &domain.UpstreamError{Status: http.StatusUnprocessableEntity}
		},
	})

	out := s.ConfirmResetCode(context.Background(), "a@example.com", "000000")
	if out.OK() || out.Redirect != "" {
		t.Fatalf("expected failure in place, got %+v", out)
	}
	if out.Message != "Something went wrong, please try again" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestSessionState_ChangePassword(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid")
	_ = store.Set(ctx, map[string]string{domain.KeyResetToken: "r1"})
	s := newTestSession(t, store, &stubAuthGateway{
		resetFn: func(_ context.Context, _ ports.PasswordChangeInput) (string, error) { return "", nil },
	})

	out := s.ChangePassword(ctx, ports.PasswordChangeInput{Email: "a@example.com", Password: "n3w", PasswordConfirmation: "n3w"})
	if !out.OK() || out.Redirect != domain.RouteLogin {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s.IsResetAuthorized() {
		t.Fatalf("reset token must be consumed")
	}
	if _, ok, _ := store.Get(ctx, domain.KeyResetToken); ok {
		t.Fatalf("reset token still stored")
	}
}

func TestSessionState_ChangePassword_PropagatesError(t *testing.T) {
	upstream := &domain.UpstreamError{Status: http.StatusUnprocessableEntity, Message: "Passwords do not match"}
	s := newTestSession(t, memstore.New().Scope("sid"), &stubAuthGateway{
		resetFn: func(_ context.Context, _ ports.PasswordChangeInput) (string, error) { return "", upstream },
	})

	out := s.ChangePassword(context.Background(), ports.PasswordChangeInput{})
	if out.OK() {
		t.Fatalf("expected failure")
	}
	if !errors.Is(out.Err, upstream) {
		t.Fatalf("expected upstream error, got %v", out.Err)
	}
	if out.Message != "Passwords do not match" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestRestoreSession_IgnoresCorruptEntries(t *testing.T) {
	ctx := context.Background()
	store := memstore.New().Scope("sid")
	_ = store.Set(ctx, map[string]string{
		domain.KeyToken:       "abc",
		domain.KeyUser:        "{not json",
		domain.KeyPermissions: "[1,",
	})

	s := newTestSession(t, store, nil)
	if !s.IsLoggedIn() {
		t.Fatalf("token alone must keep the session logged in")
	}
	if s.User() != nil || len(s.Snapshot().Permissions) != 0 {
		t.Fatalf("corrupt entries must be absent: %+v", s.Snapshot())
	}
}

func TestSessionState_Locale(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, memstore.New().Scope("sid"), nil)
	if s.Locale() != "en" {
		t.Fatalf("expected default locale, got %q", s.Locale())
	}
	if err := s.SetLocale(ctx, "ar"); err != nil {
		t.Fatalf("SetLocale: %v", err)
	}
	if s.Locale() != "ar" || s.Snapshot().Locale != "ar" {
		t.Fatalf("locale not applied")
	}
}
