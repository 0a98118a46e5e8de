package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tender_chat/internal/domain"
	apperrors "tender_chat/pkg/errors"
)

const testMaxFileSize = int64(10 * 1024 * 1024)

type chatFixture struct {
	store       *mockStoreGateway
	convs       *mockConversationRepo
	tenders     *mockTenderRepo
	dealerships *mockDealershipRepo
	presence    *mockPresenceRepo
	notify      *mockNotifyRepo
	audit       *mockAuditRepo
}

func newChatFixture(tenantID string) *chatFixture {
	f := &chatFixture{
		store:       new(mockStoreGateway),
		convs:       new(mockConversationRepo),
		tenders:     new(mockTenderRepo),
		dealerships: new(mockDealershipRepo),
		presence:    new(mockPresenceRepo),
		notify:      new(mockNotifyRepo),
		audit:       new(mockAuditRepo),
	}
	f.store.On("Resolve", tenantID).Return(newTenantStore(tenantID, f.convs, f.tenders, f.dealerships), nil)
	return f
}

// service без очереди уведомлений
func (f *chatFixture) service() ChatService {
	return NewChatService(f.store, f.presence, nil, NewAuditService(f.audit, testLogger()), testMaxFileSize, testLogger())
}

func (f *chatFixture) serviceWithNotify() ChatService {
	return NewChatService(f.store, f.presence, f.notify, NewAuditService(f.audit, testLogger()), testMaxFileSize, testLogger())
}

func adminPrincipal() domain.Principal {
	return domain.NewAdminPrincipal("a1", "tenant-1", "Admin One", "manager")
}

func dealerPrincipal() domain.Principal {
	return domain.NewDealershipPrincipal("u1", "tenant-1", "d1", "Dealer One")
}

func TestSendMessage_FileTooLarge(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	in := SendMessageInput{
		TenderID:     "t1",
		DealershipID: "d1",
		MessageType:  domain.MessageTypeFile,
		File:         &FileData{Name: "dump.zip", Size: testMaxFileSize + 1},
	}
	_, err := svc.SendMessage(context.Background(), adminPrincipal(), in)

	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
	// Отклонение по размеру происходит до обращения к хранилищу
	f.store.AssertNotCalled(t, "Resolve")
	f.convs.AssertNotCalled(t, "AppendMessage")
}

func TestSendMessage_DealershipForeignConversation(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	in := SendMessageInput{TenderID: "t1", DealershipID: "other-dealer", Content: "hi"}
	_, err := svc.SendMessage(context.Background(), dealerPrincipal(), in)

	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	f.store.AssertNotCalled(t, "Resolve")
}

func TestSendMessage_AppendsAndAudits(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	stored := &domain.Conversation{TenderID: "t1", DealershipID: "d1", UnreadCountDealership: 5}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	res, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID:     "t1",
		DealershipID: "d1",
		Content:      "please confirm the delivery date",
	})

	assert.NoError(t, err)
	assert.Equal(t, stored, res.Conversation)
	assert.NotEmpty(t, res.Message.ID)
	assert.Equal(t, "a1", res.Message.SenderID)
	assert.Equal(t, domain.PrincipalTypeAdmin, res.Message.SenderType)
	assert.Equal(t, "Admin One", res.Message.SenderName)
	assert.Equal(t, domain.MessageTypeText, res.Message.MessageType)
	assert.False(t, res.Message.IsRead)
	assert.False(t, res.Message.CreatedAt.IsZero())
	f.convs.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestSendMessage_MissingConversation(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	// Отправка не создает переписку: отсутствующая пара - ошибка
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).
		Return(nil, apperrors.ErrConversationNotFound)

	_, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID: "t1", DealershipID: "d1", Content: "hi",
	})

	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
	f.audit.AssertNotCalled(t, "CreateLog")
}

func TestSendMessage_FileNameFallsBackToContent(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	stored := &domain.Conversation{TenderID: "t1", DealershipID: "d1"}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	res, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID:     "t1",
		DealershipID: "d1",
		MessageType:  domain.MessageTypeImage,
		File:         &FileData{URL: "https://cdn/x.png", Name: "x.png", Size: 1024, Type: "image/png"},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeImage, res.Message.MessageType)
	assert.Equal(t, "x.png", res.Message.Content)
	assert.Equal(t, "https://cdn/x.png", res.Message.FileURL)
	assert.Equal(t, int64(1024), res.Message.FileSize)
}

func TestSendMessage_AttachmentNeverStoredAsText(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	stored := &domain.Conversation{TenderID: "t1", DealershipID: "d1"}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	// Клиент прислал text вместе с вложением: тип следует за фактом файла
	res, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID:     "t1",
		DealershipID: "d1",
		Content:      "see attached",
		MessageType:  domain.MessageTypeText,
		File:         &FileData{URL: "https://cdn/x.bin", Key: "x.bin", Name: "x.bin", Size: 2048, Type: "application/octet-stream"},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeFile, res.Message.MessageType)
	assert.Equal(t, "https://cdn/x.bin", res.Message.FileURL)
	assert.Equal(t, "see attached", res.Message.Content)

	// Тот же сценарий без явного типа
	res, err = svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID:     "t1",
		DealershipID: "d1",
		File:         &FileData{URL: "https://cdn/y.pdf", Key: "y.pdf", Name: "y.pdf", Size: 4096, Type: "application/pdf"},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeFile, res.Message.MessageType)
	assert.Equal(t, "y.pdf", res.Message.Content)
}

func TestSendMessage_OfflineRecipientQueuesNotice(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.serviceWithNotify()

	stored := &domain.Conversation{TenantID: "tenant-1", TenderID: "t1", DealershipID: "d1"}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	// Админ пишет дилеру, у дилера нет живых подключений
	f.presence.On("CountOnline", domain.PrincipalTypeDealership, "d1").Return(0, nil)
	f.notify.On("EnqueueMessageNotice", mock.MatchedBy(func(n *domain.MessageNotice) bool {
		return n.RecipientType == domain.PrincipalTypeDealership &&
			n.TenderID == "t1" &&
			n.DealershipID == "d1" &&
			n.SenderName == "Admin One" &&
			n.Preview == "hello there"
	})).Return(nil)

	_, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID: "t1", DealershipID: "d1", Content: "hello there",
	})

	assert.NoError(t, err)
	f.presence.AssertExpectations(t)
	f.notify.AssertExpectations(t)
}

func TestSendMessage_OnlineRecipientSkipsNotice(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.serviceWithNotify()

	stored := &domain.Conversation{TenantID: "tenant-1", TenderID: "t1", DealershipID: "d1"}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)

	// Дилер пишет админам, онлайн считается по всему тенанту
	f.presence.On("CountOnline", domain.PrincipalTypeAdmin, "tenant-1").Return(2, nil)

	_, err := svc.SendMessage(context.Background(), dealerPrincipal(), SendMessageInput{
		TenderID: "t1", DealershipID: "d1", Content: "hi",
	})

	assert.NoError(t, err)
	f.notify.AssertNotCalled(t, "EnqueueMessageNotice")
}

func TestSendMessage_NoticeFailureDoesNotFailSend(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.serviceWithNotify()

	stored := &domain.Conversation{TenantID: "tenant-1", TenderID: "t1", DealershipID: "d1"}
	f.convs.On("AppendMessage", "t1", "d1", mock.AnythingOfType("*domain.Message")).Return(stored, nil)
	f.audit.On("CreateLog", mock.AnythingOfType("*domain.AuditLog")).Return(nil)
	f.presence.On("CountOnline", domain.PrincipalTypeDealership, "d1").Return(0, nil)
	f.notify.On("EnqueueMessageNotice", mock.Anything).Return(errors.New("broker down"))

	res, err := svc.SendMessage(context.Background(), adminPrincipal(), SendMessageInput{
		TenderID: "t1", DealershipID: "d1", Content: "hi",
	})

	assert.NoError(t, err)
	assert.NotNil(t, res)
}

func TestMarkMessagesRead_CountsAndAudits(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	f.convs.On("MarkMessagesRead", "t1", "d1", domain.PrincipalTypeDealership).Return(3, nil)
	f.audit.On("CreateLog", mock.MatchedBy(func(l *domain.AuditLog) bool {
		return l.EventType == domain.EventTypeMessagesRead && l.Payload["count"] == 3
	})).Return(nil)

	count, err := svc.MarkMessagesRead(context.Background(), dealerPrincipal(), "t1", "d1")

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	f.audit.AssertExpectations(t)
}

func TestMarkMessagesRead_ZeroSkipsAudit(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	f.convs.On("MarkMessagesRead", "t1", "d1", domain.PrincipalTypeAdmin).Return(0, nil)

	count, err := svc.MarkMessagesRead(context.Background(), adminPrincipal(), "t1", "d1")

	assert.NoError(t, err)
	assert.Zero(t, count)
	f.audit.AssertNotCalled(t, "CreateLog")
}

func TestMarkMessagesRead_DealershipForeignConversation(t *testing.T) {
	f := newChatFixture("tenant-1")
	svc := f.service()

	_, err := svc.MarkMessagesRead(context.Background(), dealerPrincipal(), "t1", "other-dealer")

	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	f.convs.AssertNotCalled(t, "MarkMessagesRead")
}
