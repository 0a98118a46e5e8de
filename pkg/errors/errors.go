package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки аутентификации - фатальны для соединения, handshake отклоняется
var (
	ErrNoToken              = errors.New("no token provided")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPrincipalType = errors.New("invalid user type")
)

// Ошибки команд - уходят клиенту событием error, соединение остается живым
var (
	ErrTenantUnavailable    = errors.New("tenant database unavailable")
	ErrAccessDenied         = errors.New("access denied")
	ErrTenderNotFound       = errors.New("tender not found")
	ErrDealershipNotFound   = errors.New("dealership not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrFileTooLarge         = errors.New("file too large")
	ErrBadRequest           = errors.New("bad request")

	// Внутренняя ошибка гонки создания, клиенту не показывается
	ErrConversationExists = errors.New("conversation already exists")
)

// StoreError оборачивает ошибку персистентности. Детали остаются в логах,
// клиент получает обезличенное сообщение.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func IsAuthentication(err error) bool {
	return errors.Is(err, ErrNoToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInvalidPrincipalType)
}

// Message возвращает текст ошибки для клиента
func Message(err error) string {
	if err == nil {
		return ""
	}
	if IsStore(err) {
		return "internal server error"
	}
	return err.Error()
}

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case IsAuthentication(err):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrTenderNotFound),
		errors.Is(err, ErrDealershipNotFound),
		errors.Is(err, ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTenantUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
