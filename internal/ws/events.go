package ws

import (
	"encoding/json"
	"time"

	"tender_chat/internal/domain"
)

// Имена событий фиксированы протоколом, клиенты портала слушают ровно их
const (
	EventGetConversation   = "get_tender_conversation"
	EventJoinConversation  = "join_tender_conversation"
	EventLeaveConversation = "leave_tender_conversation"
	EventSendMessage       = "send_tender_message"
	EventTypingStart       = "tender_typing_start"
	EventTypingStop        = "tender_typing_stop"
	EventMarkRead          = "mark_tender_messages_read"
	EventGetUserStatus     = "get_tender_user_status"
	EventPing              = "tender_ping"
)

const (
	EventConnected          = "tender_chat_connected"
	EventConversationData   = "tender_conversation_data"
	EventJoinedConversation = "joined_tender_conversation"
	EventNewMessage         = "new_tender_message"
	EventConversationUpdate = "tender_conversation_update"
	EventUserTyping         = "tender_user_typing"
	EventUserStatusChange   = "user_status_change"
	EventMessagesRead       = "tender_messages_marked_read"
	EventUserStatus         = "tender_user_status"
	EventPong               = "tender_pong"
	EventError              = "error"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Входящие полезные нагрузки, ключи snake_case

type ConversationRef struct {
	TenderID     string `json:"tender_id"`
	DealershipID string `json:"dealership_id"`
}

type FilePayload struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type SendMessagePayload struct {
	TenderID     string       `json:"tender_id"`
	DealershipID string       `json:"dealership_id"`
	Content      string       `json:"content"`
	MessageType  string       `json:"message_type"`
	FileData     *FilePayload `json:"file_data,omitempty"`
}

type UserStatusQuery struct {
	UserType string `json:"user_type"`
	UserID   string `json:"user_id"`
}

// Timestamp эхо-поля не типизирован: что прислал клиент, то и вернется
type PingPayload struct {
	Timestamp json.RawMessage `json:"timestamp"`
}

// Исходящие полезные нагрузки, ключи camelCase

type ConnectedPayload struct {
	SocketID    string    `json:"socketId"`
	UserID      string    `json:"userId"`
	UserType    string    `json:"userType"`
	DisplayName string    `json:"displayName"`
	ServerTime  time.Time `json:"serverTime"`
}

type ConversationPayload struct {
	Conversation *domain.Conversation `json:"conversation"`
}

type NewMessagePayload struct {
	TenderID     string          `json:"tenderId"`
	DealershipID string          `json:"dealershipId"`
	Message      *domain.Message `json:"message"`
}

// ConversationUpdatePayload - облегченное уведомление для групповой комнаты
// другой стороны: превью и счетчик, без тела переписки
type ConversationUpdatePayload struct {
	TenderID     string          `json:"tenderId"`
	DealershipID string          `json:"dealershipId"`
	LastMessage  *domain.Message `json:"lastMessage"`
	UnreadCount  int             `json:"unreadCount"`
	SenderType   string          `json:"senderType"`
}

type TypingPayload struct {
	TenderID     string `json:"tenderId"`
	DealershipID string `json:"dealershipId"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Typing       bool   `json:"typing"`
}

type MessagesReadPayload struct {
	TenderID     string `json:"tenderId"`
	DealershipID string `json:"dealershipId"`
	ReaderID     string `json:"readerId"`
	ReaderType   string `json:"readerType"`
	ReaderName   string `json:"readerName"`
	Count        int    `json:"count"`
}

type PongPayload struct {
	Timestamp  json.RawMessage `json:"timestamp"`
	ServerTime time.Time       `json:"serverTime"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
