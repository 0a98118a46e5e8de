package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	"tender_chat/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.New("error", "test")
}

// --- Mock StoreGateway ---

type mockStoreGateway struct {
	mock.Mock
}

func (m *mockStoreGateway) Resolve(ctx context.Context, tenantID string) (*repository.TenantStore, error) {
	args := m.Called(tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TenantStore), args.Error(1)
}

// newTenantStore собирает store из моков для одного тенанта
func newTenantStore(tenantID string, convs *mockConversationRepo, tenders *mockTenderRepo, dealerships *mockDealershipRepo) *repository.TenantStore {
	return &repository.TenantStore{
		TenantID:      tenantID,
		Conversations: convs,
		Tenders:       tenders,
		Dealerships:   dealerships,
	}
}

// --- Mock ConversationRepository ---

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) GetByPair(ctx context.Context, tenderID, dealershipID string) (*domain.Conversation, error) {
	args := m.Called(tenderID, dealershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	return m.Called(conv).Error(0)
}

func (m *mockConversationRepo) AppendMessage(ctx context.Context, tenderID, dealershipID string, msg *domain.Message) (*domain.Conversation, error) {
	args := m.Called(tenderID, dealershipID, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) MarkMessagesRead(ctx context.Context, tenderID, dealershipID, readerType string, readAt time.Time) (int, error) {
	args := m.Called(tenderID, dealershipID, readerType)
	return args.Int(0), args.Error(1)
}

func (m *mockConversationRepo) List(ctx context.Context, filter repository.ConversationFilter) ([]*domain.Conversation, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) SetArchived(ctx context.Context, id primitive.ObjectID, partyType string, archived bool) error {
	return m.Called(id, partyType, archived).Error(0)
}

// --- Mock TenderRepository ---

type mockTenderRepo struct {
	mock.Mock
}

func (m *mockTenderRepo) GetByID(ctx context.Context, id string) (*domain.Tender, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tender), args.Error(1)
}

// --- Mock DealershipRepository ---

type mockDealershipRepo struct {
	mock.Mock
}

func (m *mockDealershipRepo) GetByID(ctx context.Context, id string) (*domain.Dealership, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dealership), args.Error(1)
}

// --- Mock AdminUserRepository ---

type mockAdminUserRepo struct {
	mock.Mock
}

func (m *mockAdminUserRepo) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

// --- Mock PresenceRepository ---

type mockPresenceRepo struct {
	mock.Mock
}

func (m *mockPresenceRepo) Upsert(ctx context.Context, entry *domain.PresenceEntry) error {
	return m.Called(entry).Error(0)
}

func (m *mockPresenceRepo) SetOffline(ctx context.Context, userType, userID, socketID string, at time.Time) (bool, error) {
	args := m.Called(userType, userID, socketID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPresenceRepo) Get(ctx context.Context, userType, userID string) (*domain.PresenceEntry, error) {
	args := m.Called(userType, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PresenceEntry), args.Error(1)
}

func (m *mockPresenceRepo) CountOnline(ctx context.Context, userType, scopeID string) (int, error) {
	args := m.Called(userType, scopeID)
	return args.Int(0), args.Error(1)
}

// --- Mock NotifyRepository ---

type mockNotifyRepo struct {
	mock.Mock
}

func (m *mockNotifyRepo) EnqueueMessageNotice(ctx context.Context, notice *domain.MessageNotice) error {
	return m.Called(notice).Error(0)
}

// --- Mock AuditRepository ---

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) CreateLog(ctx context.Context, log *domain.AuditLog) error {
	return m.Called(log).Error(0)
}
