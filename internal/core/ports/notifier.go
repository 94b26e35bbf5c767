package ports

import (
	"context"

	"github.com/sanadcare/admin-console/internal/core/domain"
)

// Notifier surfaces a message to the browser on its next page render.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
	Drain(ctx context.Context) ([]domain.Notification, error)
}
