package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"tender_chat/internal/domain"
	"tender_chat/internal/service"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

// Session - явное состояние одного соединения. Все команды исполняет одна
// читающая горутина строго в порядке прихода, поэтому поля сессии не требуют
// синхронизации.
type Session struct {
	conn     *Connection
	hub      *Hub
	services *service.Services
	log      logger.Logger

	// Комнаты с незакрытым typing_start: на дисконнекте по каждой уходит
	// синтетический typing:false
	typingRooms map[string]ConversationRef
}

func NewSession(conn *Connection, hub *Hub, services *service.Services, log logger.Logger) *Session {
	return &Session{
		conn:        conn,
		hub:         hub,
		services:    services,
		log:         log,
		typingRooms: make(map[string]ConversationRef),
	}
}

// Run обслуживает соединение до разрыва: онбординг, цикл команд, уборка
func (s *Session) Run(ctx context.Context) {
	p := s.conn.Principal

	s.hub.Register(s.conn)
	defer s.teardown()

	if _, err := s.services.Presence.Connect(ctx, p, s.conn.ID); err != nil {
		// Присутствие деградирует, но чат продолжает работать
		s.log.Error("Failed to store presence entry", "socket_id", s.conn.ID, "error", err)
	}

	s.hub.Join(s.conn, p.PersonalRoom())
	s.hub.Join(s.conn, p.GroupRoom())

	_ = s.conn.SendEvent(EventConnected, ConnectedPayload{
		SocketID:    s.conn.ID,
		UserID:      p.ID,
		UserType:    p.Type,
		DisplayName: p.DisplayName,
		ServerTime:  time.Now(),
	})

	// Смена статуса уходит только в групповую комнату своей стороны
	s.hub.BroadcastToRoom(p.GroupRoom(), s.conn.ID, EventUserStatusChange, domain.UserStatus{
		ID:       p.ID,
		Type:     p.Type,
		Online:   true,
		LastSeen: time.Now(),
	})

	s.services.Audit.LogEvent(ctx, p.TenantID, p.ID, p.Type, domain.EventTypeChatConnected, map[string]interface{}{
		"socket_id": s.conn.ID,
	})

	s.log.Info("Chat connection established", "socket_id", s.conn.ID, "user_id", p.ID, "user_type", p.Type)

	s.readLoop(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	s.conn.ws.SetReadLimit(maxFrameSize)
	_ = s.conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.ws.SetPongHandler(func(string) error {
		return s.conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Unexpected socket close", "socket_id", s.conn.ID, "error", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.replyError("malformed frame")
			continue
		}

		s.dispatch(ctx, &frame)
	}
}

func (s *Session) dispatch(ctx context.Context, frame *inboundFrame) {
	var err error

	switch frame.Event {
	case EventGetConversation:
		err = s.handleGetConversation(ctx, frame.Data)
	case EventJoinConversation:
		err = s.handleJoinConversation(ctx, frame.Data)
	case EventLeaveConversation:
		err = s.handleLeaveConversation(frame.Data)
	case EventSendMessage:
		err = s.handleSendMessage(ctx, frame.Data)
	case EventTypingStart:
		err = s.handleTyping(frame.Data, true)
	case EventTypingStop:
		err = s.handleTyping(frame.Data, false)
	case EventMarkRead:
		err = s.handleMarkRead(ctx, frame.Data)
	case EventGetUserStatus:
		err = s.handleGetUserStatus(ctx, frame.Data)
	case EventPing:
		err = s.handlePing(frame.Data)
	default:
		s.replyError(fmt.Sprintf("unknown event: %s", frame.Event))
		return
	}

	if err != nil {
		// Ошибка команды локальна: соединение живет, клиент получает error,
		// остальные участники комнат ничего не видят
		if apperrors.IsStore(err) {
			s.log.Error("Command failed", "event", frame.Event, "socket_id", s.conn.ID, "error", err)
		}
		s.replyError(apperrors.Message(err))
	}
}

func (s *Session) handleGetConversation(ctx context.Context, data json.RawMessage) error {
	var ref ConversationRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return apperrors.ErrBadRequest
	}

	p := s.conn.Principal
	if err := s.services.Chat.CheckConversationAccess(p, ref.DealershipID); err != nil {
		return err
	}

	conv, err := s.services.Conversation.GetOrCreate(ctx, p.TenantID, ref.TenderID, ref.DealershipID)
	if err != nil {
		return err
	}

	return s.conn.SendEvent(EventConversationData, ConversationPayload{Conversation: conv})
}

func (s *Session) handleJoinConversation(ctx context.Context, data json.RawMessage) error {
	var ref ConversationRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return apperrors.ErrBadRequest
	}

	p := s.conn.Principal
	if err := s.services.Chat.CheckConversationAccess(p, ref.DealershipID); err != nil {
		return err
	}

	conv, err := s.services.Conversation.GetOrCreate(ctx, p.TenantID, ref.TenderID, ref.DealershipID)
	if err != nil {
		return err
	}

	room := domain.ConversationRoom(ref.TenderID, ref.DealershipID)
	s.hub.Join(s.conn, room)

	// Вход в переписку сразу гасит непрочитанное
	count, err := s.services.Chat.MarkMessagesRead(ctx, p, ref.TenderID, ref.DealershipID)
	if err != nil {
		return err
	}
	if count > 0 {
		conv, err = s.services.Conversation.Get(ctx, p.TenantID, ref.TenderID, ref.DealershipID)
		if err != nil {
			return err
		}
		s.hub.BroadcastToRoom(room, s.conn.ID, EventMessagesRead, MessagesReadPayload{
			TenderID:     ref.TenderID,
			DealershipID: ref.DealershipID,
			ReaderID:     p.ID,
			ReaderType:   p.Type,
			ReaderName:   p.DisplayName,
			Count:        count,
		})
	}

	return s.conn.SendEvent(EventJoinedConversation, ConversationPayload{Conversation: conv})
}

func (s *Session) handleLeaveConversation(data json.RawMessage) error {
	var ref ConversationRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return apperrors.ErrBadRequest
	}

	room := domain.ConversationRoom(ref.TenderID, ref.DealershipID)
	s.stopTypingIn(room)
	s.hub.Leave(s.conn, room)
	return nil
}

func (s *Session) handleSendMessage(ctx context.Context, data json.RawMessage) error {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return apperrors.ErrBadRequest
	}

	p := s.conn.Principal
	in := service.SendMessageInput{
		TenderID:     payload.TenderID,
		DealershipID: payload.DealershipID,
		Content:      payload.Content,
		MessageType:  payload.MessageType,
	}
	if payload.FileData != nil {
		in.File = &service.FileData{
			URL:  payload.FileData.URL,
			Key:  payload.FileData.Key,
			Size: payload.FileData.Size,
			Type: payload.FileData.Type,
			Name: payload.FileData.Name,
		}
	}

	res, err := s.services.Chat.SendMessage(ctx, p, in)
	if err != nil {
		return err
	}

	// Рассылка строго после успешной записи
	room := domain.ConversationRoom(payload.TenderID, payload.DealershipID)
	s.hub.BroadcastToRoom(room, "", EventNewMessage, NewMessagePayload{
		TenderID:     payload.TenderID,
		DealershipID: payload.DealershipID,
		Message:      res.Message,
	})

	// Другая сторона узнает о сообщении через свою групповую комнату
	recipientType := domain.OppositeParty(p.Type)
	groupRoom := domain.GroupRoom(recipientType, p.TenantID, payload.DealershipID)
	s.hub.BroadcastToRoom(groupRoom, "", EventConversationUpdate, ConversationUpdatePayload{
		TenderID:     payload.TenderID,
		DealershipID: payload.DealershipID,
		LastMessage:  res.Message,
		UnreadCount:  res.Conversation.UnreadFor(recipientType),
		SenderType:   p.Type,
	})

	return nil
}

func (s *Session) handleTyping(data json.RawMessage, typing bool) error {
	var ref ConversationRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return apperrors.ErrBadRequest
	}

	p := s.conn.Principal
	if err := s.services.Chat.CheckConversationAccess(p, ref.DealershipID); err != nil {
		return err
	}

	room := domain.ConversationRoom(ref.TenderID, ref.DealershipID)
	if typing {
		s.typingRooms[room] = ref
	} else {
		delete(s.typingRooms, room)
	}

	s.hub.BroadcastToRoom(room, s.conn.ID, EventUserTyping, TypingPayload{
		TenderID:     ref.TenderID,
		DealershipID: ref.DealershipID,
		UserID:       p.ID,
		UserName:     p.DisplayName,
		Typing:       typing,
	})
	return nil
}

func (s *Session) handleMarkRead(ctx context.Context, data json.RawMessage) error {
	var ref ConversationRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return apperrors.ErrBadRequest
	}

	p := s.conn.Principal
	count, err := s.services.Chat.MarkMessagesRead(ctx, p, ref.TenderID, ref.DealershipID)
	if err != nil {
		return err
	}

	payload := MessagesReadPayload{
		TenderID:     ref.TenderID,
		DealershipID: ref.DealershipID,
		ReaderID:     p.ID,
		ReaderType:   p.Type,
		ReaderName:   p.DisplayName,
		Count:        count,
	}

	// Комната узнает кто прочитал, но не какие именно сообщения
	room := domain.ConversationRoom(ref.TenderID, ref.DealershipID)
	s.hub.BroadcastToRoom(room, s.conn.ID, EventMessagesRead, payload)

	return s.conn.SendEvent(EventMessagesRead, payload)
}

func (s *Session) handleGetUserStatus(ctx context.Context, data json.RawMessage) error {
	var q UserStatusQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return apperrors.ErrBadRequest
	}

	status := s.services.Presence.GetStatus(ctx, q.UserType, q.UserID)
	return s.conn.SendEvent(EventUserStatus, status)
}

func (s *Session) handlePing(data json.RawMessage) error {
	var ping PingPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ping); err != nil {
			return apperrors.ErrBadRequest
		}
	}

	return s.conn.SendEvent(EventPong, PongPayload{
		Timestamp:  ping.Timestamp,
		ServerTime: time.Now(),
	})
}

func (s *Session) stopTypingIn(room string) {
	ref, ok := s.typingRooms[room]
	if !ok {
		return
	}
	delete(s.typingRooms, room)

	p := s.conn.Principal
	s.hub.BroadcastToRoom(room, s.conn.ID, EventUserTyping, TypingPayload{
		TenderID:     ref.TenderID,
		DealershipID: ref.DealershipID,
		UserID:       p.ID,
		UserName:     p.DisplayName,
		Typing:       false,
	})
}

// teardown выполняется на любом выходе из Run. Исходный контекст запроса
// к этому моменту может быть уже отменен, поэтому уборка идет на фоновом.
func (s *Session) teardown() {
	ctx := context.Background()
	p := s.conn.Principal

	// Незакрытые typing гасятся до выхода из комнат
	for room := range s.typingRooms {
		s.stopTypingIn(room)
	}

	status, err := s.services.Presence.Disconnect(ctx, p, s.conn.ID)
	if err != nil {
		s.log.Error("Failed to mark presence offline", "socket_id", s.conn.ID, "error", err)
	}
	// nil-статус означает, что запись уже перехвачена новым подключением -
	// тогда offline не рассылается
	if status != nil {
		s.hub.BroadcastToRoom(p.GroupRoom(), s.conn.ID, EventUserStatusChange, *status)
	}

	s.hub.Unregister(s.conn)
	s.conn.Close(websocket.CloseNormalClosure, "bye")

	s.services.Audit.LogEvent(ctx, p.TenantID, p.ID, p.Type, domain.EventTypeChatDisconnected, map[string]interface{}{
		"socket_id": s.conn.ID,
	})

	s.log.Info("Chat connection closed", "socket_id", s.conn.ID, "user_id", p.ID)
}

func (s *Session) replyError(message string) {
	_ = s.conn.SendEvent(EventError, ErrorPayload{Message: message})
}
