package ports

import (
	"context"

	"github.com/sanadcare/admin-console/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the request.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

// AuditService writes a single audit event; the dispatcher workers call it.
type AuditService interface {
	Write(ctx context.Context, event domain.AuditEvent) error
}
