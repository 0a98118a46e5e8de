package repository

import (
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"tender_chat/internal/config"
	"tender_chat/pkg/logger"
)

type Repositories struct {
	Tenant    TenantRepository
	AdminUser AdminUserRepository
	Store     StoreGateway
	Presence  PresenceRepository
	RateLimit RateLimitRepository
	Audit     AuditRepository
	Notify    NotifyRepository
}

func NewRepositories(db *pgxpool.Pool, mongoClient *mongo.Client, redisClient *redis.Client, asynqClient *asynq.Client, cfg *config.Config, log logger.Logger) *Repositories {
	tenants := NewTenantRepository(db, log)

	repos := &Repositories{
		Tenant:    tenants,
		AdminUser: NewAdminUserRepository(db, log),
		Store:     NewStoreGateway(mongoClient, tenants, log),
		RateLimit: NewRateLimitRepository(redisClient, log),
		Audit:     NewAuditRepository(db, log),
	}

	if cfg.Chat.PresenceBackend == "redis" {
		repos.Presence = NewRedisPresenceRepository(redisClient, log)
		log.Info("Presence backend: redis")
	} else {
		repos.Presence = NewMemoryPresenceRepository()
		log.Info("Presence backend: memory")
	}

	if asynqClient != nil {
		repos.Notify = NewNotifyRepository(asynqClient, cfg.Notify.Queue, log)
		log.Info("Notify queue enabled", "queue", cfg.Notify.Queue)
	} else {
		log.Warn("Notify queue disabled")
	}

	return repos
}
