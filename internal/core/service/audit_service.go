package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewAuditService returns an AuditService backed by repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, now: time.Now, log: log}
}

// Write stamps the event if needed and persists it.
func (s *auditService) Write(ctx context.Context, event domain.AuditEvent) error {
	if event.Kind == "" {
		return fmt.Errorf("write audit event: %w: kind is required", domain.ErrValidation)
	}
	if event.At.IsZero() {
		event.At = s.now().UTC()
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}

	s.log.Debug().
		Str("session_id", event.SessionID).
		Str("kind", string(event.Kind)).
		Str("path", event.Path).
		Msg("audit event written")
	return nil
}
