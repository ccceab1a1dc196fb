package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "  Reader@Example.com ",
		Password:    "correct horse battery",
		DisplayName: " Reader ",
		Client:      ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Reader@Example.com", reg.User.Email)
	assert.Equal(t, "Reader", reg.User.DisplayName)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, 900, reg.ExpiresIn)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.NotEqual(t, reg.SessionID, login.SessionID)

	user, claims, err := env.auth.VerifyAccessToken(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)
	assert.Equal(t, login.SessionID, claims.SessionID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := setupServices(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:       "not-an-email",
		Password:    "short",
		DisplayName: "   ",
	})
	require.Error(t, err)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodeValidation, de.Code)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "display_name")
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := setupServices(t)
	env.register(t, "reader")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:       "READER@example.com",
		Password:    "another password",
		DisplayName: "Copycat",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	env := setupServices(t)
	env.register(t, "reader")
	ctx := context.Background()

	_, err := env.auth.Login(ctx, LoginRequest{Email: "reader@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, RegisterRequest{
		Email: "r@example.com", Password: "correct horse battery", DisplayName: "R",
	})
	require.NoError(t, err)

	refreshed, err := env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, reg.SessionID, refreshed.SessionID)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is spent.
	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_LogoutRevokesTokens(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, RegisterRequest{
		Email: "r@example.com", Password: "correct horse battery", DisplayName: "R",
	})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, reg.SessionID))
	require.NoError(t, env.auth.Logout(ctx, reg.SessionID), "logout twice")

	_, _, err = env.auth.VerifyAccessToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.auth.RefreshTokens(ctx, RefreshRequest{RefreshToken: reg.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessTokenGarbage(t *testing.T) {
	env := setupServices(t)

	_, _, err := env.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	env := setupServices(t)
	userID := env.register(t, "reader")

	user, err := env.auth.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "reader", user.DisplayName)

	_, err = env.auth.Me(context.Background(), "user-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
