package service

import (
	"context"
	"time"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	"campus_exchange/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorUserID *string, actorRole string, roomID *int64, eventType string, payload map[string]interface{}) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorUserID *string, actorRole string, roomID *int64, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:   time.Now().UTC(),
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		RoomID:      roomID,
		EventType:   eventType,
		Payload:     payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}

// recordAudit writes an audit entry and only logs on failure; auditing
// never fails the operation being audited.
func recordAudit(ctx context.Context, audit AuditService, log logger.Logger, actorUserID string, roomID *int64, eventType string, payload map[string]interface{}) {
	if audit == nil {
		return
	}
	if err := audit.LogEvent(ctx, &actorUserID, domain.ActorRoleUser, roomID, eventType, payload); err != nil {
		log.Warn("Failed to write audit entry", "error", err, "event_type", eventType)
	}
}
