package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ballotbox/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	service := NewService("test-signing-key")

	token, err := service.GenerateAdminToken("official-1", time.Hour)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "official-1", claims.ActorID)
}

func TestExpiredTokenRejected(t *testing.T) {
	service := NewService("test-signing-key")

	token, err := service.GenerateAdminToken("official-1", -time.Minute)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestWrongKeyRejected(t *testing.T) {
	service := NewService("test-signing-key")
	other := NewService("other-signing-key")

	token, err := service.GenerateAdminToken("official-1", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageTokenRejected(t *testing.T) {
	service := NewService("test-signing-key")

	_, err := service.ValidateToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestNonAdminRoleRejected(t *testing.T) {
	service := NewService("test-signing-key")

	observer := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "observer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
			Audience:  []string{audience},
		},
	})
	token, err := observer.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestWrongAudienceRejected(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    issuer,
			Audience:  []string{"some-other-service"},
		},
	})
	token, err := foreign.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	service := NewService("test-signing-key")
	_, err = service.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
