package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indicae/backend/internal/models"
	"github.com/indicae/backend/internal/types"
)

func TestRegisterCreatesUserWithProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(context.Background(), &types.RegisterRequest{
		Name:     "Ana Clara Souza",
		Email:    "ana@example.com",
		Password: "password123",
		City:     "Recife",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", claims.UserID).First(&profile).Error)
	assert.Equal(t, "Ana", profile.FirstName)
	assert.Equal(t, "Clara Souza", profile.LastName)
	assert.Equal(t, "Recife", profile.City)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	req := &types.RegisterRequest{Name: "Ana Souza", Email: "ana@example.com", Password: "password123"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register(context.Background(), &types.RegisterRequest{
		Name: "Bruno Lima", Email: "bruno@example.com", Password: "password123",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "bruno@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(context.Background(), "bruno@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register(context.Background(), &types.RegisterRequest{
		Name: "Carla Mendes", Email: "carla@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(db, "different-secret")
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
