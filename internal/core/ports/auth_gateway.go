package ports

import (
	"context"

	"github.com/sanadcare/admin-console/internal/core/domain"
)

// LoginInput is the credential pair posted to the upstream /login.
type LoginInput struct {
	Identifier string
	Password   string
}

// LoginResult is the data part of a successful login.
type LoginResult struct {
	Admin   *domain.Principal
	Token   string
	Message string
}

// ResetCodeResult is the answer to a verified reset code. ResetToken is empty
// when the upstream did not issue one.
type ResetCodeResult struct {
	ResetToken string
	Message    string
}

// PasswordChangeInput carries the new password for the reset flow.
type PasswordChangeInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
}

// AuthGateway is the part of the upstream API the session talks to.
type AuthGateway interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context) (string, error)
	RequestResetCode(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, code string) (*ResetCodeResult, error)
	ResetPassword(ctx context.Context, in PasswordChangeInput) (string, error)
}

// Credentials is what the gateway needs from the caller's session to
// authorize an outgoing request and to tear it down on 401/403.
type Credentials interface {
	Token() string
	ResetToken() string
	Locale() string
	ClearAuthData(ctx context.Context) error
}

type credentialsKey struct{}

// WithCredentials binds creds to ctx for the gateway's request hooks.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials bound to ctx, if any.
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}
