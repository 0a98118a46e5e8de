package handler

import (
	"net/http"
	"strconv"

	"tender_chat/internal/config"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	wsURL string
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	// Публичный адрес из конфига или локальный IP машины
	wsURL := cfg.Server.PublicURL
	if wsURL == "" {
		wsURL = "ws://" + config.GetLocalIP() + ":" + strconv.Itoa(cfg.Server.Port)
	}

	return &HealthHandler{
		wsURL: wsURL,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "tender-chat",
	})
}

// ServerInfo возвращает адреса подключения для клиентов
func (h *HealthHandler) ServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ws_url":   h.wsURL,
		"ws_path":  "/ws/tender-chat",
		"api_base": "/api/v1",
	})
}
