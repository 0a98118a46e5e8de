package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"tender_chat/pkg/logger"
)

const rateLimitKeyPrefix = "tender_chat:rl:"

type RateLimitRepository interface {
	// Allow инкрементирует счетчик окна и возвращает (разрешено, остаток)
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func (r *rateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	redisKey := rateLimitKeyPrefix + key

	count, err := r.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		r.log.Error("Failed to increment rate limit", "key", key, "error", err)
		return false, 0, err
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, redisKey, window).Err(); err != nil {
			// Счетчик без TTL блокировал бы ключ навсегда: убираем его,
			// ошибка уходит наверх в fail-open
			r.log.Error("Failed to set rate limit window", "key", key, "error", err)
			r.redis.Del(ctx, redisKey)
			return false, 0, err
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(limit), remaining, nil
}
