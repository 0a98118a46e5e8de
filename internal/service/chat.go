package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

const noticePreviewLimit = 120

// FileData - метаданные уже загруженного вложения. Сам файл через чат не
// проходит, только ссылка на blob-хранилище.
type FileData struct {
	URL  string
	Key  string
	Size int64
	Type string
	Name string
}

type SendMessageInput struct {
	TenderID     string
	DealershipID string
	Content      string
	MessageType  string
	File         *FileData
}

// SendMessageResult - записанное сообщение и состояние переписки после записи
type SendMessageResult struct {
	Message      *domain.Message
	Conversation *domain.Conversation
}

type ChatService interface {
	SendMessage(ctx context.Context, p domain.Principal, in SendMessageInput) (*SendMessageResult, error)
	MarkMessagesRead(ctx context.Context, p domain.Principal, tenderID, dealershipID string) (int, error)
	CheckConversationAccess(p domain.Principal, dealershipID string) error
}

type chatService struct {
	store        repository.StoreGateway
	presenceRepo repository.PresenceRepository
	notifyRepo   repository.NotifyRepository
	audit        AuditService
	maxFileSize  int64
	log          logger.Logger
}

func NewChatService(store repository.StoreGateway, presenceRepo repository.PresenceRepository, notifyRepo repository.NotifyRepository, audit AuditService, maxFileSize int64, log logger.Logger) ChatService {
	return &chatService{
		store:        store,
		presenceRepo: presenceRepo,
		notifyRepo:   notifyRepo,
		audit:        audit,
		maxFileSize:  maxFileSize,
		log:          log,
	}
}

// SendMessage проводит сообщение по конвейеру: валидация, проверка доступа,
// атомарная запись, и только после успешной записи - данные для рассылки.
// Отправка не создает переписку, это делает только явный get/join.
func (s *chatService) SendMessage(ctx context.Context, p domain.Principal, in SendMessageInput) (*SendMessageResult, error) {
	// Лимит вложения проверяется до любых обращений к хранилищу
	if in.File != nil && in.File.Size > s.maxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	if err := s.CheckConversationAccess(p, in.DealershipID); err != nil {
		return nil, err
	}

	ts, err := s.store.Resolve(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}

	msg := buildMessage(p, in)

	// Append атомарен: push сообщения, инкремент счетчика другой стороны,
	// last_message_at. Отсутствующая пара вернется как ErrConversationNotFound.
	conv, err := ts.Conversations.AppendMessage(ctx, in.TenderID, in.DealershipID, msg)
	if err != nil {
		return nil, err
	}

	s.notifyIfOffline(ctx, p, conv, msg)

	s.audit.LogEvent(ctx, p.TenantID, p.ID, p.Type, domain.EventTypeMessageSent, map[string]interface{}{
		"tender_id":     in.TenderID,
		"dealership_id": in.DealershipID,
		"message_id":    msg.ID,
		"message_type":  msg.MessageType,
	})

	return &SendMessageResult{Message: msg, Conversation: conv}, nil
}

func (s *chatService) MarkMessagesRead(ctx context.Context, p domain.Principal, tenderID, dealershipID string) (int, error) {
	if err := s.CheckConversationAccess(p, dealershipID); err != nil {
		return 0, err
	}

	ts, err := s.store.Resolve(ctx, p.TenantID)
	if err != nil {
		return 0, err
	}

	count, err := ts.Conversations.MarkMessagesRead(ctx, tenderID, dealershipID, p.Type, time.Now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.audit.LogEvent(ctx, p.TenantID, p.ID, p.Type, domain.EventTypeMessagesRead, map[string]interface{}{
			"tender_id":     tenderID,
			"dealership_id": dealershipID,
			"count":         count,
		})
	}

	return count, nil
}

// CheckConversationAccess: дилер пишет и читает только переписку своего центра
func (s *chatService) CheckConversationAccess(p domain.Principal, dealershipID string) error {
	if p.IsDealership() && p.DealershipID != dealershipID {
		return apperrors.ErrAccessDenied
	}
	return nil
}

func buildMessage(p domain.Principal, in SendMessageInput) *domain.Message {
	messageType := in.MessageType
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	// Файловые поля заполняются только у нетекстовых сообщений: вложение
	// при текстовом типе переводит сообщение в file
	if in.File != nil && messageType == domain.MessageTypeText {
		messageType = domain.MessageTypeFile
	}

	msg := &domain.Message{
		ID:          uuid.New().String(),
		SenderID:    p.ID,
		SenderType:  p.Type,
		SenderName:  p.DisplayName,
		MessageType: messageType,
		Content:     in.Content,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}

	if in.File != nil {
		msg.FileURL = in.File.URL
		msg.FileKey = in.File.Key
		msg.FileSize = in.File.Size
		msg.FileType = in.File.Type
		msg.FileName = in.File.Name
		if msg.Content == "" {
			msg.Content = in.File.Name
		}
	}

	return msg
}

// notifyIfOffline ставит задачу почтовому сервису, когда у стороны-получателя
// нет ни одного онлайн-подключения. Сбой очереди отправителя не касается.
func (s *chatService) notifyIfOffline(ctx context.Context, sender domain.Principal, conv *domain.Conversation, msg *domain.Message) {
	if s.notifyRepo == nil {
		return
	}

	recipientType := domain.OppositeParty(sender.Type)
	scopeID := conv.DealershipID
	if recipientType == domain.PrincipalTypeAdmin {
		scopeID = sender.TenantID
	}

	online, err := s.presenceRepo.CountOnline(ctx, recipientType, scopeID)
	if err != nil {
		s.log.Warn("Presence scan failed, skipping notice", "error", err)
		return
	}
	if online > 0 {
		return
	}

	notice := &domain.MessageNotice{
		TenantID:      sender.TenantID,
		TenderID:      conv.TenderID,
		DealershipID:  conv.DealershipID,
		RecipientType: recipientType,
		SenderName:    msg.SenderName,
		Preview:       previewOf(msg.Content),
		SentAt:        msg.CreatedAt,
	}

	if err := s.notifyRepo.EnqueueMessageNotice(ctx, notice); err != nil {
		s.log.Error("Failed to enqueue message notice", "tender_id", conv.TenderID, "dealership_id", conv.DealershipID, "error", err)
	}
}

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= noticePreviewLimit {
		return content
	}
	return string(runes[:noticePreviewLimit]) + "..."
}
