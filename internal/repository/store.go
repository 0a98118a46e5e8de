package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

// StoreGateway - единственная граница изоляции тенантов. Любое чтение или
// запись данных чата идет через аксессоры, полученные из Resolve; кросс-
// тенантный id сюда попасть не может, потому что база выбирается по реестру.
type StoreGateway interface {
	Resolve(ctx context.Context, tenantID string) (*TenantStore, error)
}

// TenantStore - аксессоры одной базы тенанта
type TenantStore struct {
	TenantID      string
	Conversations ConversationRepository
	Tenders       TenderRepository
	Dealerships   DealershipRepository
}

type storeGateway struct {
	client  *mongo.Client
	tenants TenantRepository
	log     logger.Logger

	mu    sync.RWMutex
	cache map[string]*TenantStore // ключ - имя базы, не id тенанта
}

func NewStoreGateway(client *mongo.Client, tenants TenantRepository, log logger.Logger) StoreGateway {
	return &storeGateway{
		client:  client,
		tenants: tenants,
		log:     log,
		cache:   make(map[string]*TenantStore),
	}
}

func (g *storeGateway) Resolve(ctx context.Context, tenantID string) (*TenantStore, error) {
	// Реестр опрашивается на каждый resolve: деактивация тенанта должна
	// действовать сразу, кешируются только собранные аксессоры
	tenant, err := g.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	store, ok := g.cache[tenant.MongoDatabase]
	g.mu.RUnlock()
	if ok {
		return store, nil
	}

	db := g.client.Database(tenant.MongoDatabase)
	if err := ensureConversationIndexes(ctx, db); err != nil {
		g.log.Error("Failed to ensure conversation indexes", "tenant_id", tenantID, "database", tenant.MongoDatabase, "error", err)
		return nil, apperrors.Store("conversations.ensure_indexes", err)
	}

	store = &TenantStore{
		TenantID:      tenantID,
		Conversations: NewConversationRepository(db, tenantID, g.log),
		Tenders:       NewTenderRepository(db, g.log),
		Dealerships:   NewDealershipRepository(db, g.log),
	}

	g.mu.Lock()
	g.cache[tenant.MongoDatabase] = store
	g.mu.Unlock()

	g.log.Info("Tenant store resolved", "tenant_id", tenantID, "database", tenant.MongoDatabase)
	return store, nil
}

func ensureConversationIndexes(ctx context.Context, db *mongo.Database) error {
	// Уникальность пары (tender_id, dealership_id) закрывает гонку создания:
	// проигравший получает duplicate key и перечитывает документ победителя
	_, err := db.Collection("conversations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tender_id", Value: 1}, {Key: "dealership_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
