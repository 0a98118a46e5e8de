package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "tender_chat/pkg/errors"
)

const secret = "unit-test-secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateAccessToken("u1", "dealership_user", "Dealer One", "dealership_user", "company-1", "dealer-1", secret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "dealership_user", claims.UserType)
	assert.Equal(t, "Dealer One", claims.Name)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.Equal(t, "dealer-1", claims.DealershipID)
	assert.Equal(t, "u1", claims.Subject)
}

func TestValidate_Expired(t *testing.T) {
	token, err := GenerateAccessToken("u1", "admin", "Admin", "manager", "", "", secret, -time.Minute)
	assert.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("u1", "admin", "Admin", "manager", "", "", secret, time.Hour)
	assert.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := ValidateToken("definitely.not.jwt", secret)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
