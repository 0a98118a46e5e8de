package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "tender_chat/pkg/errors"
)

// ErrorHandler переводит ошибки, сложенные через c.Error, в единый
// JSON-ответ {error, code}
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем есть ли ошибки
		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()

		// Готовый APIError отдается как есть
		var apiErr *apperrors.APIError
		if errors.As(err.Err, &apiErr) {
			c.JSON(apiErr.Code, apiErr)
			return
		}

		// Определяем статус код
		statusCode := apperrors.HTTPStatusFromError(err.Err)
		c.JSON(statusCode, apperrors.NewAPIError(apperrors.Message(err.Err), statusCode))
	}
}
