package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"tender_chat/internal/service"
	"tender_chat/internal/ws"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	services *service.Services
	hub      *ws.Hub
	log      logger.Logger
}

func NewWebSocketHandler(services *service.Services, hub *ws.Hub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		services: services,
		hub:      hub,
		log:      log,
	}
}

// HandleTenderChat - точка входа чата. Аутентификация строго до апгрейда:
// невалидный токен отклоняется HTTP-статусом, а не событием внутри сокета.
func (h *WebSocketHandler) HandleTenderChat(c *gin.Context) {
	principal, err := h.services.Identity.Resolve(c.Request.Context(), extractToken(c))
	if err != nil {
		h.log.Warn("Websocket handshake rejected", "error", err, "ip", c.ClientIP())
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	session := ws.NewSession(ws.NewConnection(principal, conn), h.hub, h.services, h.log)
	session.Run(c.Request.Context())
}

// extractToken принимает токен из query (так подключаются браузерные клиенты)
// или из заголовка Authorization
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
