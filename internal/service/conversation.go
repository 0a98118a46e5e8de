package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

type ConversationService interface {
	// GetOrCreate идемпотентен: первый вызов создает переписку, параллельные
	// и повторные вызовы возвращают тот же документ
	GetOrCreate(ctx context.Context, tenantID, tenderID, dealershipID string) (*domain.Conversation, error)
	Get(ctx context.Context, tenantID, tenderID, dealershipID string) (*domain.Conversation, error)
	List(ctx context.Context, p domain.Principal, archived *bool) ([]*domain.Conversation, error)
	SetArchived(ctx context.Context, p domain.Principal, conversationID string, archived bool) error
}

type conversationService struct {
	store repository.StoreGateway
	log   logger.Logger
}

func NewConversationService(store repository.StoreGateway, log logger.Logger) ConversationService {
	return &conversationService{store: store, log: log}
}

func (s *conversationService) GetOrCreate(ctx context.Context, tenantID, tenderID, dealershipID string) (*domain.Conversation, error) {
	ts, err := s.store.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	conv, err := ts.Conversations.GetByPair(ctx, tenderID, dealershipID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, apperrors.ErrConversationNotFound) {
		return nil, err
	}

	// Перед созданием проверяем, что тендер и дилер существуют в тенанте
	if _, err := ts.Tenders.GetByID(ctx, tenderID); err != nil {
		return nil, err
	}
	if _, err := ts.Dealerships.GetByID(ctx, dealershipID); err != nil {
		return nil, err
	}

	now := time.Now()
	conv = &domain.Conversation{
		TenderID:     tenderID,
		DealershipID: dealershipID,
		Messages:     []domain.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = ts.Conversations.Create(ctx, conv)
	if err == nil {
		s.log.Info("Conversation created", "tenant_id", tenantID, "tender_id", tenderID, "dealership_id", dealershipID)
		return conv, nil
	}
	if !errors.Is(err, apperrors.ErrConversationExists) {
		return nil, err
	}

	// Гонку создания выиграл кто-то другой - возвращаем его документ
	conv, err = ts.Conversations.GetByPair(ctx, tenderID, dealershipID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConversationNotFound) {
			return nil, apperrors.Store("conversations.get_after_conflict", err)
		}
		return nil, err
	}
	return conv, nil
}

func (s *conversationService) Get(ctx context.Context, tenantID, tenderID, dealershipID string) (*domain.Conversation, error) {
	ts, err := s.store.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ts.Conversations.GetByPair(ctx, tenderID, dealershipID)
}

func (s *conversationService) List(ctx context.Context, p domain.Principal, archived *bool) ([]*domain.Conversation, error) {
	ts, err := s.store.Resolve(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}

	filter := repository.ConversationFilter{ViewerType: p.Type, Archived: archived}
	if p.IsDealership() {
		filter.DealershipID = p.DealershipID
	}

	return ts.Conversations.List(ctx, filter)
}

func (s *conversationService) SetArchived(ctx context.Context, p domain.Principal, conversationID string, archived bool) error {
	ts, err := s.store.Resolve(ctx, p.TenantID)
	if err != nil {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return apperrors.ErrConversationNotFound
	}

	conv, err := ts.Conversations.GetByID(ctx, oid)
	if err != nil {
		return err
	}

	if p.IsDealership() && conv.DealershipID != p.DealershipID {
		return apperrors.ErrAccessDenied
	}

	return ts.Conversations.SetArchived(ctx, oid, p.Type, archived)
}
