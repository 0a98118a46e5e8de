package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tender_chat/internal/domain"
	"tender_chat/pkg/logger"
)

const presenceHashKey = "tender_chat:presence"

// Redis-вариант хранилища присутствия: переживает рестарт процесса,
// last-seen не теряется при деплое
type redisPresenceRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRedisPresenceRepository(redis *redis.Client, log logger.Logger) PresenceRepository {
	return &redisPresenceRepository{redis: redis, log: log}
}

func (r *redisPresenceRepository) Upsert(ctx context.Context, entry *domain.PresenceEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := domain.PresenceKey(entry.UserType, entry.UserID)
	if err := r.redis.HSet(ctx, presenceHashKey, key, data).Err(); err != nil {
		r.log.Error("Failed to store presence entry", "key", key, "error", err)
		return err
	}

	return nil
}

func (r *redisPresenceRepository) SetOffline(ctx context.Context, userType, userID, socketID string, at time.Time) (bool, error) {
	entry, err := r.Get(ctx, userType, userID)
	if err != nil {
		return false, err
	}
	if entry == nil || entry.SocketID != socketID {
		return false, nil
	}

	entry.Online = false
	entry.LastSeen = at
	return true, r.Upsert(ctx, entry)
}

func (r *redisPresenceRepository) Get(ctx context.Context, userType, userID string) (*domain.PresenceEntry, error) {
	key := domain.PresenceKey(userType, userID)

	data, err := r.redis.HGet(ctx, presenceHashKey, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to get presence entry", "key", key, "error", err)
		return nil, err
	}

	var entry domain.PresenceEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *redisPresenceRepository) CountOnline(ctx context.Context, userType, scopeID string) (int, error) {
	all, err := r.redis.HGetAll(ctx, presenceHashKey).Result()
	if err != nil {
		r.log.Error("Failed to scan presence entries", "error", err)
		return 0, err
	}

	count := 0
	for _, data := range all {
		var entry domain.PresenceEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}
		if entry.Online && entry.UserType == userType && matchesScope(&entry, scopeID) {
			count++
		}
	}
	return count, nil
}
