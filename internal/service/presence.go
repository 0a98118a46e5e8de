package service

import (
	"context"
	"time"

	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	"tender_chat/pkg/logger"
)

type PresenceService interface {
	Connect(ctx context.Context, p domain.Principal, socketID string) (*domain.PresenceEntry, error)
	// Disconnect возвращает nil-статус, если сокет уже не владеет записью
	// (пользователь успел переподключиться)
	Disconnect(ctx context.Context, p domain.Principal, socketID string) (*domain.UserStatus, error)
	// GetStatus никогда не падает: отсутствующая запись - это offline
	GetStatus(ctx context.Context, userType, userID string) domain.UserStatus
}

type presenceService struct {
	presenceRepo repository.PresenceRepository
	log          logger.Logger
}

func NewPresenceService(presenceRepo repository.PresenceRepository, log logger.Logger) PresenceService {
	return &presenceService{presenceRepo: presenceRepo, log: log}
}

func (s *presenceService) Connect(ctx context.Context, p domain.Principal, socketID string) (*domain.PresenceEntry, error) {
	entry := &domain.PresenceEntry{
		SocketID:     socketID,
		UserID:       p.ID,
		UserType:     p.Type,
		TenantID:     p.TenantID,
		DealershipID: p.DealershipID,
		DisplayName:  p.DisplayName,
		Online:       true,
		LastSeen:     time.Now(),
	}

	if err := s.presenceRepo.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *presenceService) Disconnect(ctx context.Context, p domain.Principal, socketID string) (*domain.UserStatus, error) {
	now := time.Now()

	owned, err := s.presenceRepo.SetOffline(ctx, p.Type, p.ID, socketID, now)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, nil
	}

	return &domain.UserStatus{ID: p.ID, Type: p.Type, Online: false, LastSeen: now}, nil
}

func (s *presenceService) GetStatus(ctx context.Context, userType, userID string) domain.UserStatus {
	entry, err := s.presenceRepo.Get(ctx, userType, userID)
	if err != nil {
		s.log.Warn("Presence lookup failed, reporting offline", "user_type", userType, "user_id", userID, "error", err)
	}
	if err != nil || entry == nil {
		return domain.UserStatus{ID: userID, Type: userType, Online: false, LastSeen: time.Now()}
	}

	return entry.Status()
}
