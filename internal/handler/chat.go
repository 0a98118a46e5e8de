package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"tender_chat/internal/domain"
	"tender_chat/internal/service"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

// ChatHandler - REST-срез поверх переписок: список для входящих и архивация.
// Сами сообщения ходят только через websocket.
type ChatHandler struct {
	conversationService service.ConversationService
	log                 logger.Logger
}

func NewChatHandler(conversationService service.ConversationService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	var archived *bool
	if raw := c.Query("archived"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archived filter"})
			return
		}
		archived = &value
	}

	conversations, err := h.conversationService.List(c.Request.Context(), principal, archived)
	if err != nil {
		h.log.Error("Failed to list conversations", "error", err, "userId", principal.ID)
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *ChatHandler) ArchiveConversation(c *gin.Context) {
	h.setArchived(c, true)
}

func (h *ChatHandler) UnarchiveConversation(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *ChatHandler) setArchived(c *gin.Context, archived bool) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")
	if err := h.conversationService.SetArchived(c.Request.Context(), principal, conversationID, archived); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": apperrors.Message(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"archived": archived})
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get("principal")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return domain.Principal{}, false
	}

	principal, ok := value.(domain.Principal)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return domain.Principal{}, false
	}
	return principal, true
}
