package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "tender_chat/pkg/errors"
)

// Claims - полезная нагрузка токена от Auth-сервиса.
// UserType различает админов площадки и пользователей дилерских центров.
type Claims struct {
	UserID       string `json:"user_id"`
	UserType     string `json:"user_type"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	CompanyID    string `json:"company_id,omitempty"`
	DealershipID string `json:"dealership_id,omitempty"`
	jwtlib.RegisteredClaims
}

func GenerateAccessToken(userID, userType, name, role, companyID, dealershipID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		UserType:     userType,
		Name:         name,
		Role:         role,
		CompanyID:    companyID,
		DealershipID: dealershipID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
