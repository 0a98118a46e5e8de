package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "tender_chat/pkg/errors"
)

func errorHandlerTestRouter(fail gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", fail)
	return r
}

func TestErrorHandler_SentinelMapped(t *testing.T) {
	r := errorHandlerTestRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrTenderNotFound)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"tender not found","code":404}`, w.Body.String())
}

func TestErrorHandler_APIErrorRenderedAsIs(t *testing.T) {
	r := errorHandlerTestRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.NewAPIError("archived must be true or false", http.StatusBadRequest))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"archived must be true or false","code":400}`, w.Body.String())
}

func TestErrorHandler_StoreDetailsMasked(t *testing.T) {
	r := errorHandlerTestRouter(func(c *gin.Context) {
		_ = c.Error(apperrors.Store("conversations.list", errors.New("connection refused 10.0.0.5:27017")))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}
