package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nipuna-lk/edutrack-api/internal/models"
	appErrors "github.com/nipuna-lk/edutrack-api/pkg/errors"
)

func newAuthService(t *testing.T) *AuthService {
	return NewAuthService(newStoreForTest(t), nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "edutrack-api",
	})
}

func TestAuthSignupAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, models.SignupRequest{Username: "mr.perera", Password: "secret123", Subject: "Maths"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Maths", resp.Teacher.Subject)

	login, err := svc.Login(ctx, models.LoginRequest{Username: "mr.perera", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, resp.Teacher.ID, login.Teacher.ID)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "mr.perera", claims.Username)
	assert.Equal(t, "Maths", claims.Subject)
}

func TestAuthSignupDuplicateUsername(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{Username: "mr.perera", Password: "secret123", Subject: "Maths"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, models.SignupRequest{Username: "mr.perera", Password: "other456", Subject: "Science"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, models.SignupRequest{Username: "mr.perera", Password: "secret123", Subject: "Maths"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "mr.perera", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "nobody", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(t)
	other := NewAuthService(newStoreForTest(t), nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	ctx := context.Background()

	resp, err := svc.Signup(ctx, models.SignupRequest{Username: "mr.perera", Password: "secret123", Subject: "Maths"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthSignupValidation(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "ab", Password: "short", Subject: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
