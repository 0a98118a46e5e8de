package repository

import (
	"context"
	"sync"
	"time"

	"tender_chat/internal/domain"
)

// PresenceRepository хранит записи присутствия. Запись на дисконнекте не
// удаляется, а помечается offline, чтобы last-seen продолжал отвечать.
type PresenceRepository interface {
	Upsert(ctx context.Context, entry *domain.PresenceEntry) error
	// SetOffline переводит запись в offline, только если socketID все еще
	// владеет ею. Реконнект перезаписывает владельца, и запоздавший
	// дисконнект старого сокета не должен гасить новое подключение.
	SetOffline(ctx context.Context, userType, userID, socketID string, at time.Time) (bool, error)
	// Get возвращает nil, nil если записи нет
	Get(ctx context.Context, userType, userID string) (*domain.PresenceEntry, error)
	// CountOnline считает онлайн-записи стороны: для админов scopeID - это
	// тенант, для дилерских пользователей - дилерский центр
	CountOnline(ctx context.Context, userType, scopeID string) (int, error)
}

type memoryPresenceRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry
}

func NewMemoryPresenceRepository() PresenceRepository {
	return &memoryPresenceRepository{entries: make(map[string]domain.PresenceEntry)}
}

func (r *memoryPresenceRepository) Upsert(_ context.Context, entry *domain.PresenceEntry) error {
	r.mu.Lock()
	r.entries[domain.PresenceKey(entry.UserType, entry.UserID)] = *entry
	r.mu.Unlock()
	return nil
}

func (r *memoryPresenceRepository) SetOffline(_ context.Context, userType, userID, socketID string, at time.Time) (bool, error) {
	key := domain.PresenceKey(userType, userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok || entry.SocketID != socketID {
		return false, nil
	}

	entry.Online = false
	entry.LastSeen = at
	r.entries[key] = entry
	return true, nil
}

func (r *memoryPresenceRepository) Get(_ context.Context, userType, userID string) (*domain.PresenceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[domain.PresenceKey(userType, userID)]
	if !ok {
		return nil, nil
	}

	out := entry
	return &out, nil
}

func (r *memoryPresenceRepository) CountOnline(_ context.Context, userType, scopeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if !entry.Online || entry.UserType != userType {
			continue
		}
		if matchesScope(&entry, scopeID) {
			count++
		}
	}
	return count, nil
}

func matchesScope(entry *domain.PresenceEntry, scopeID string) bool {
	if entry.UserType == domain.PrincipalTypeDealership {
		return entry.DealershipID == scopeID
	}
	return entry.TenantID == scopeID
}
