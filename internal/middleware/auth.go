package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"tender_chat/internal/service"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

type AuthMiddleware struct {
	identityService service.IdentityService
	log             logger.Logger
}

func NewAuthMiddleware(identityService service.IdentityService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identityService: identityService,
		log:             log,
	}
}

// RequireAuth разрешает принципала из Bearer-токена и кладет его в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}

		principal, err := m.identityService.Resolve(c.Request.Context(), token)
		if err != nil {
			c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": apperrors.Message(err)})
			c.Abort()
			return
		}

		c.Set("principal", principal)
		c.Next()
	}
}
