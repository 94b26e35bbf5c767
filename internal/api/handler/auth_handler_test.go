package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

func postForm(e *echo.Echo, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		locale: "en",
		loginFn: func(_ context.Context, in ports.LoginInput) (*domain.Principal, domain.Outcome) {
			if in.Identifier != "a@b.com" || in.Password != "x" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Principal{ID: 1, Name: "A"}, domain.Succeeded("Welcome back, A!", "/")
		},
	}
	audit := &recordedAudit{}
	h := NewAuthHandler(testCatalog, audit, zerolog.Nop())

	c, rec := postForm(e, "/login", url.Values{"identifier": {"a@b.com"}, "password": {"x"}})
	q := bindBrowser(c, sess)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	pending, _ := q.Drain(context.Background())
	if len(pending) != 1 || pending[0].Kind != domain.NotifySuccess || pending[0].Message != "Welcome back, A!" {
		t.Fatalf("unexpected notifications: %+v", pending)
	}
	if pending[0].Title != "Success" {
		t.Fatalf("expected localized title, got %q", pending[0].Title)
	}
	if len(audit.events) != 1 || audit.events[0].Kind != domain.AuditLoginSucceeded || audit.events[0].UserID != 1 {
		t.Fatalf("unexpected audit: %+v", audit.events)
	}
}

func TestAuthHandler_Login_Failure(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		loginFn: func(context.Context, ports.LoginInput) (*domain.Principal, domain.Outcome) {
			return nil, domain.Failed("Invalid credentials", errors.New("422"))
		},
	}
	audit := &recordedAudit{}
	h := NewAuthHandler(testCatalog, audit, zerolog.Nop())

	c, rec := postForm(e, "/login", url.Values{"identifier": {"a"}, "password": {"b"}})
	q := bindBrowser(c, sess)

	if err := h.Login(c); err != nil {
		t.Fatalf("failed login must not surface an error, got %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected to stay on /login, got %q", rec.Header().Get(echo.HeaderLocation))
	}
	pending, _ := q.Drain(context.Background())
	if len(pending) != 1 || pending[0].Kind != domain.NotifyError || pending[0].Message != "Invalid credentials" {
		t.Fatalf("unexpected notifications: %+v", pending)
	}
	if audit.events[0].Kind != domain.AuditLoginFailed {
		t.Fatalf("expected login_failed audit, got %+v", audit.events)
	}
}

func TestAuthHandler_Login_ValidationNeverCallsUpstream(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		loginFn: func(context.Context, ports.LoginInput) (*domain.Principal, domain.Outcome) {
			t.Fatalf("login must not be attempted")
			return nil, domain.Outcome{}
		},
	}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	c, _ := postForm(e, "/login", url.Values{"identifier": {"a"}})
	bindBrowser(c, sess)

	err := h.Login(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected field message, got %q", err.Error())
	}
}

func TestAuthHandler_Logout_AlwaysLandsOnLogin(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		user: &domain.Principal{ID: 4},
		logoutFn: func(context.Context) domain.Outcome {
			return domain.Outcome{Kind: domain.OutcomeFailure, Message: "offline", Redirect: "/login"}
		},
	}
	audit := &recordedAudit{}
	h := NewAuthHandler(testCatalog, audit, zerolog.Nop())

	c, rec := postForm(e, "/logout", nil)
	q := bindBrowser(c, sess)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected /login, got %q", rec.Header().Get(echo.HeaderLocation))
	}
	pending, _ := q.Drain(context.Background())
	if len(pending) != 1 || pending[0].Kind != domain.NotifyWarning {
		t.Fatalf("expected a warning, got %+v", pending)
	}
	if audit.events[0].Kind != domain.AuditLogout || audit.events[0].UserID != 4 {
		t.Fatalf("unexpected audit: %+v", audit.events)
	}
}

func TestAuthHandler_Forgot(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		requestFn: func(_ context.Context, email string) domain.Outcome {
			return domain.Succeeded("sent", "/otp?email="+url.QueryEscape(email))
		},
	}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	c, rec := postForm(e, "/forgot", url.Values{"email": {"a@b.com"}})
	bindBrowser(c, sess)

	if err := h.Forgot(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != "/otp?email=a%40b.com" {
		t.Fatalf("unexpected redirect %q", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_VerifyCode_FailureStaysOnOTP(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		confirmFn: func(context.Context, string, string) domain.Outcome {
			return domain.Failed("Invalid code", errors.New("422"))
		},
	}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	c, rec := postForm(e, "/otp", url.Values{"email": {"a@b.com"}, "code": {"123456"}})
	bindBrowser(c, sess)

	if err := h.VerifyCode(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != "/otp?email=a%40b.com" {
		t.Fatalf("unexpected redirect %q", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_ResetPassword_PropagatesFailure(t *testing.T) {
	e := newEcho()
	upstream := &domain.UpstreamError{Status: http.StatusUnprocessableEntity, Message: "Token expired"}
	sess := &stubSession{
		changeFn: func(context.Context, ports.PasswordChangeInput) domain.Outcome {
			return domain.Failed("Token expired", upstream)
		},
	}
	audit := &recordedAudit{}
	h := NewAuthHandler(testCatalog, audit, zerolog.Nop())

	c, _ := postForm(e, "/resetpassword", url.Values{
		"email":                 {"a@b.com"},
		"password":              {"n3wpassword"},
		"password_confirmation": {"n3wpassword"},
	})
	q := bindBrowser(c, sess)

	err := h.ResetPassword(c)
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	pending, _ := q.Drain(context.Background())
	if len(pending) != 1 || pending[0].Kind != domain.NotifyError {
		t.Fatalf("expected an error notification, got %+v", pending)
	}
	if len(audit.events) != 0 {
		t.Fatalf("failed reset must not be audited as a reset")
	}
}

func TestAuthHandler_ResetPassword_RejectedSessionHasNoExtraToast(t *testing.T) {
	e := newEcho()
	rejected := &domain.UpstreamError{Status: http.StatusUnauthorized, Message: "Unauthenticated."}
	sess := &stubSession{
		changeFn: func(context.Context, ports.PasswordChangeInput) domain.Outcome {
			return domain.Failed("Unauthenticated.", rejected)
		},
	}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	c, _ := postForm(e, "/resetpassword", url.Values{
		"email":                 {"a@b.com"},
		"password":              {"n3wpassword"},
		"password_confirmation": {"n3wpassword"},
	})
	q := bindBrowser(c, sess)

	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if pending, _ := q.Drain(context.Background()); len(pending) != 0 {
		t.Fatalf("expected no toast, got %+v", pending)
	}
}

func TestAuthHandler_ResetPassword_MismatchedConfirmation(t *testing.T) {
	e := newEcho()
	sess := &stubSession{
		changeFn: func(context.Context, ports.PasswordChangeInput) domain.Outcome {
			t.Fatalf("must not reach the upstream")
			return domain.Outcome{}
		},
	}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	c, _ := postForm(e, "/resetpassword", url.Values{
		"email":                 {"a@b.com"},
		"password":              {"n3wpassword"},
		"password_confirmation": {"other-password"},
	})
	bindBrowser(c, sess)

	err := h.ResetPassword(c)
	if !errors.Is(err, domain.ErrValidation) || !strings.Contains(err.Error(), "password_confirmation must match password") {
		t.Fatalf("expected confirmation mismatch, got %v", err)
	}
}

func TestAuthHandler_OTPPage_RendersEmailAndNotifications(t *testing.T) {
	e := newEcho()
	sess := &stubSession{locale: "ar"}
	h := NewAuthHandler(testCatalog, &recordedAudit{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/otp?email=a%40b.com", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	q := bindBrowser(c, sess)
	_ = q.Notify(context.Background(), domain.Notification{Kind: domain.NotifySuccess, Message: "sent"})

	if err := h.OTPPage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp pageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Page != "/otp" || resp.Email != "a@b.com" || resp.Locale != "ar" {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0].Message != "sent" {
		t.Fatalf("notifications not drained into the page: %+v", resp.Notifications)
	}
	if left, _ := q.Drain(context.Background()); len(left) != 0 {
		t.Fatalf("queue must be empty after render")
	}
}
