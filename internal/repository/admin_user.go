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

type AdminUserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AdminUser, error)
}

type adminUserRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAdminUserRepository(db *pgxpool.Pool, log logger.Logger) AdminUserRepository {
	return &adminUserRepository{db: db, log: log}
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	query := `
		SELECT id, tenant_id, display_name, role, active, created_at
		FROM admin_users
		WHERE id = $1
	`

	user := &domain.AdminUser{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.TenantID, &user.DisplayName, &user.Role, &user.Active, &user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get admin user", "user_id", id, "error", err)
		return nil, apperrors.Store("admin_users.get", err)
	}

	if !user.Active {
		r.log.Warn("Admin user is inactive", "user_id", id)
		return nil, apperrors.ErrUserNotFound
	}

	return user, nil
}
