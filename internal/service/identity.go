package service

import (
	"context"

	"tender_chat/internal/config"
	"tender_chat/internal/domain"
	"tender_chat/internal/repository"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/jwt"
	"tender_chat/pkg/logger"
)

// Маркеры типа учетки в claims токена
const (
	ClaimUserTypeAdmin      = "admin"
	ClaimUserTypeDealership = "dealership_user"
)

type IdentityService interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

type identityService struct {
	adminRepo repository.AdminUserRepository
	jwtCfg    config.JWTConfig
	log       logger.Logger
}

func NewIdentityService(adminRepo repository.AdminUserRepository, jwtCfg config.JWTConfig, log logger.Logger) IdentityService {
	return &identityService{
		adminRepo: adminRepo,
		jwtCfg:    jwtCfg,
		log:       log,
	}
}

// Resolve выполняется один раз на соединение, до входа в любые комнаты.
// Админская учетка сверяется с control plane, дилерским claims верим как
// есть - их записи подтянут последующие операции.
func (s *identityService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, apperrors.ErrNoToken
	}

	claims, err := jwt.ValidateToken(token, s.jwtCfg.Secret)
	if err != nil {
		return domain.Principal{}, err
	}

	switch claims.UserType {
	case ClaimUserTypeDealership:
		if claims.UserID == "" || claims.DealershipID == "" || claims.CompanyID == "" {
			return domain.Principal{}, apperrors.ErrInvalidPrincipalType
		}
		return domain.NewDealershipPrincipal(claims.UserID, claims.CompanyID, claims.DealershipID, claims.Name), nil

	case ClaimUserTypeAdmin:
		user, err := s.adminRepo.GetByID(ctx, claims.UserID)
		if err != nil {
			return domain.Principal{}, err
		}
		// Тенант и роль берем из control plane, не из токена
		return domain.NewAdminPrincipal(user.ID, user.TenantID, user.DisplayName, user.Role), nil

	default:
		s.log.Warn("Unknown principal type in token", "user_type", claims.UserType, "user_id", claims.UserID)
		return domain.Principal{}, apperrors.ErrInvalidPrincipalType
	}
}
