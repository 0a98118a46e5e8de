package service

import (
	"context"
	"time"

	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	"tender_chat/pkg/logger"
)

// AuditService пишет след чата в control plane. Запись best-effort: сбой
// аудита никогда не валит породившую его команду.
type AuditService interface {
	LogEvent(ctx context.Context, tenantID, actorID, actorType, eventType string, payload map[string]interface{})
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

func (s *auditService) LogEvent(ctx context.Context, tenantID, actorID, actorType, eventType string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime: time.Now(),
		TenantID:  tenantID,
		ActorID:   actorID,
		ActorType: actorType,
		EventType: eventType,
		Payload:   payload,
	}

	if err := s.auditRepo.CreateLog(ctx, auditLog); err != nil {
		s.log.Warn("Audit write failed", "event_type", eventType, "tenant_id", tenantID, "error", err)
	}
}
