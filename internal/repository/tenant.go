package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tender_chat/internal/domain"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}

type tenantRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewTenantRepository(db *pgxpool.Pool, log logger.Logger) TenantRepository {
	return &tenantRepository{db: db, log: log}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, mongo_database, active, created_at
		FROM tenants
		WHERE id = $1
	`

	tenant := &domain.Tenant{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tenant.ID, &tenant.Name, &tenant.MongoDatabase, &tenant.Active, &tenant.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTenantUnavailable
		}
		r.log.Error("Failed to get tenant", "tenant_id", id, "error", err)
		return nil, apperrors.Store("tenants.get", err)
	}

	if !tenant.Active {
		r.log.Warn("Tenant is inactive", "tenant_id", id)
		return nil, apperrors.ErrTenantUnavailable
	}

	return tenant, nil
}
