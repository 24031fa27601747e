package service

import (
	"courtbooking/internal/auth"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredAdminAuth(t *testing.T) *adminAuthService {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.AdminEmail = "desk@example.com"
	cfg.AdminPasswordHash = hash
	cfg.JWTSecret = "test-secret"
	return &adminAuthService{cfg: cfg}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := configuredAdminAuth(t)

	token, err := svc.Login(" Desk@Example.com ", "s3cret")
	require.NoError(t, err)

	claims, err := auth.ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "desk@example.com", claims.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := configuredAdminAuth(t)

	_, err := svc.Login("desk@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("other@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutConfiguredAccount(t *testing.T) {
	_, err := NewAdminAuthService(testConfig()).Login("desk@example.com", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
