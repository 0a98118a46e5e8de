package domain

import "time"

type AuditLog struct {
	ID        int64                  `json:"id"`
	EventTime time.Time              `json:"event_time"`
	TenantID  string                 `json:"tenant_id"`
	ActorID   string                 `json:"actor_id"`
	ActorType string                 `json:"actor_type"`
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
}

const (
	EventTypeChatConnected    = "CHAT_CONNECTED"
	EventTypeChatDisconnected = "CHAT_DISCONNECTED"
	EventTypeMessageSent      = "MESSAGE_SENT"
	EventTypeMessagesRead     = "MESSAGES_READ"
)
