package ports

import (
	"context"

	"github.com/sanadcare/admin-console/internal/core/domain"
)

// Session is the per-browser session state the HTTP layer drives.
type Session interface {
	Credentials

	IsLoggedIn() bool
	IsResetAuthorized() bool
	HasPermission(key domain.PermissionKey) bool
	User() *domain.Principal
	Snapshot() domain.Session

	Login(ctx context.Context, in LoginInput) (*domain.Principal, domain.Outcome)
	Logout(ctx context.Context) domain.Outcome
	RequestPasswordReset(ctx context.Context, email string) domain.Outcome
	ConfirmResetCode(ctx context.Context, email, code string) domain.Outcome
	ChangePassword(ctx context.Context, in PasswordChangeInput) domain.Outcome
	SetLocale(ctx context.Context, locale string) error
}
