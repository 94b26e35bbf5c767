package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/api/metrics"
	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

// AuthHandler serves the login and password reset flow.
type AuthHandler struct {
	tr    ports.Translator
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewAuthHandler(tr ports.Translator, audit ports.AuditRecorder, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{tr: tr, audit: audit, log: log}
}

type loginRequest struct {
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

type forgotRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

type otpRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"code" form:"code" validate:"required,numeric,max=10"`
}

type resetPasswordRequest struct {
	Email                string `json:"email" form:"email" validate:"required,email"`
	Password             string `json:"password" form:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginPage renders the login form.
//
// @Summary      Login page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  pageResponse
// @Success      302  "already logged in"
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.page(c, domain.RouteLogin)
}

// ForgotPage renders the reset code request form.
//
// @Summary      Forgot password page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  pageResponse
// @Router       /forgot [get]
func (h *AuthHandler) ForgotPage(c echo.Context) error {
	return h.page(c, domain.RouteForgot)
}

// OTPPage renders the reset code entry form.
//
// @Summary      Reset code page
// @Tags         auth
// @Produce      json
// @Param        email  query     string  false  "Address the code was sent to"
// @Success      200    {object}  pageResponse
// @Router       /otp [get]
func (h *AuthHandler) OTPPage(c echo.Context) error {
	return h.page(c, domain.RouteOTP)
}

// ResetPasswordPage renders the new password form.
//
// @Summary      Reset password page
// @Tags         auth
// @Produce      json
// @Param        email  query     string  false  "Account being reset"
// @Success      200    {object}  pageResponse
// @Success      302    "no reset authorization"
// @Router       /resetpassword [get]
func (h *AuthHandler) ResetPasswordPage(c echo.Context) error {
	return h.page(c, domain.RouteResetPassword)
}

func (h *AuthHandler) page(c echo.Context, page string) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}
	return b.render(c, h.log, pageResponse{Page: page, Email: c.QueryParam("email")})
}

// Login authenticates against the upstream API.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  loginRequest  true  "Credentials"
// @Success      303   "to / on success, back to /login on failure"
// @Failure      422   {object}  ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, out := b.session.Login(ctx, ports.LoginInput{Identifier: req.Identifier, Password: req.Password})
	b.notifyOutcome(c, h.log, h.tr, out)

	event := domain.AuditEvent{SessionID: middleware.SessionIDFrom(ctx), Kind: domain.AuditLoginSucceeded}
	if out.OK() {
		metrics.LoginsTotal.WithLabelValues("success").Inc()
		event.UserID = user.ID
	} else {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		event.Kind = domain.AuditLoginFailed
		event.Detail = req.Identifier
	}
	h.record(event)

	return c.Redirect(http.StatusSeeOther, redirectOr(out, domain.RouteLogin))
}

// Logout ends the session. The browser always lands on /login.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "to /login"
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := b.userID()
	out := b.session.Logout(ctx)
	if out.OK() {
		b.notify(c, h.log, h.tr, domain.NotifySuccess, out.Message)
	} else {
		b.notify(c, h.log, h.tr, domain.NotifyWarning, out.Message)
	}
	h.record(domain.AuditEvent{SessionID: middleware.SessionIDFrom(ctx), Kind: domain.AuditLogout, UserID: userID})

	return c.Redirect(http.StatusSeeOther, redirectOr(out, domain.RouteLogin))
}

// Forgot asks the upstream to mail a reset code.
//
// @Summary      Request a reset code
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  forgotRequest  true  "Account email"
// @Success      303   "to /otp on success, back to /forgot on failure"
// @Failure      422   {object}  ErrorResponse
// @Router       /forgot [post]
func (h *AuthHandler) Forgot(c echo.Context) error {
	var req forgotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	out := b.session.RequestPasswordReset(c.Request().Context(), req.Email)
	b.notifyOutcome(c, h.log, h.tr, out)
	return c.Redirect(http.StatusSeeOther, redirectOr(out, domain.RouteForgot))
}

// VerifyCode checks the mailed reset code.
//
// @Summary      Verify a reset code
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  otpRequest  true  "Email and code"
// @Success      303   "to /resetpassword on success, back to /otp on failure"
// @Failure      422   {object}  ErrorResponse
// @Router       /otp [post]
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req otpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	out := b.session.ConfirmResetCode(c.Request().Context(), req.Email, req.Code)
	b.notifyOutcome(c, h.log, h.tr, out)
	return c.Redirect(http.StatusSeeOther, redirectOr(out, withEmail(domain.RouteOTP, req.Email)))
}

// ResetPassword sets the new password. Unlike the other steps a failure is
// returned to the caller with the upstream's status.
//
// @Summary      Reset the password
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  resetPasswordRequest  true  "New password"
// @Success      303   "to /login"
// @Failure      422   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse
// @Router       /resetpassword [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	out := b.session.ChangePassword(ctx, ports.PasswordChangeInput{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if out.OK() || !errors.Is(out.Err, domain.ErrUnauthenticated) {
		b.notifyOutcome(c, h.log, h.tr, out)
	}
	if !out.OK() {
		return out.Err
	}

	h.record(domain.AuditEvent{SessionID: middleware.SessionIDFrom(ctx), Kind: domain.AuditPasswordReset, Detail: req.Email})
	return c.Redirect(http.StatusSeeOther, out.Redirect)
}

func (h *AuthHandler) record(e domain.AuditEvent) {
	e.At = time.Now().UTC()
	h.audit.Record(e)
}

// redirectOr is where the browser goes after an action: the outcome's target,
// or fallback when the action keeps it in place.
func redirectOr(out domain.Outcome, fallback string) string {
	if out.Redirect != "" {
		return out.Redirect
	}
	return fallback
}

func withEmail(route, email string) string {
	if email == "" {
		return route
	}
	return route + "?" + url.Values{"email": {email}}.Encode()
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
