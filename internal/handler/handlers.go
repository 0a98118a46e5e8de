package handler

import (
	"tender_chat/internal/config"
	"tender_chat/internal/service"
	"tender_chat/internal/ws"
	"tender_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *ws.Hub, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Chat:      NewChatHandler(services.Conversation, log),
		WebSocket: NewWebSocketHandler(services, hub, log),
	}
}
