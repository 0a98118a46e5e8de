package service

import (
	"tender_chat/internal/config"
	"tender_chat/internal/repository"
	"tender_chat/pkg/logger"
)

type Services struct {
	Identity     IdentityService
	Conversation ConversationService
	Chat         ChatService
	Presence     PresenceService
	RateLimit    RateLimitService
	Audit        AuditService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)

	return &Services{
		Identity:     NewIdentityService(repos.AdminUser, cfg.JWT, log),
		Conversation: NewConversationService(repos.Store, log),
		Chat:         NewChatService(repos.Store, repos.Presence, repos.Notify, audit, cfg.Chat.MaxFileSize, log),
		Presence:     NewPresenceService(repos.Presence, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
	}
}
