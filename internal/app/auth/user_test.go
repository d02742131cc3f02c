package auth

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"testing"
	"time"
)

func testAuthorizer() *Authorizer {
	return &Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "test-secret",
		AccessTokenTTL:   time.Minute,
		AuthorizationTTL: time.Hour,
	}
}

func TestAuthorizer_AccessToken(t *testing.T) {
	a := testAuthorizer()
	u := &user.User{UserID: "u-1"}
	session := &user.Authorization{ID: "auth-1"}

	token, err := a.GenerateAccessToken(u, session)
	require.NoError(t, err)

	data, err := a.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", data.UserID)
	assert.Equal(t, "auth-1", data.Authorization)

	other := testAuthorizer()
	other.Secret = "another-secret"
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": "auth-1",
		"sub": "u-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(a.Secret))
	require.NoError(t, err)
	_, err = a.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrAccessTokenExpired)
	assert.ErrorIs(t, err, ErrAccessTokenInvalid)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	uow := unitofwork.New(db, NewAtomicContext, messagebus.New(nil), nil)
	svc := NewService(testAuthorizer(), nil)

	u, err := svc.CreateUser(ctx, uow, "u-1", " Coach@Club.test ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "coach@club.test", u.Email)

	_, err = svc.CreateUser(ctx, uow, "u-2", "coach@club.test", "other")
	assert.ErrorIs(t, err, user.ErrUserEmailDuplicate)

	_, err = svc.Login(ctx, uow, user.Device{}, "coach@club.test", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	_, err = svc.Login(ctx, uow, user.Device{}, "nobody@club.test", "hunter22")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	device := user.Device{Browser: "Firefox", OS: "Linux", IPAddress: "10.0.0.1"}
	tokens, err := svc.Login(ctx, uow, device, "COACH@club.test", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.RefreshToken)

	data, err := svc.Authorizer.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", data.UserID)

	active, err := svc.IsActive(ctx, uow, data)
	require.NoError(t, err)
	assert.True(t, active)

	refreshed, err := svc.Refresh(ctx, uow, tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)

	require.NoError(t, svc.Logout(ctx, uow, data.UserID, data.Authorization))
	assert.ErrorIs(t, svc.Logout(ctx, uow, data.UserID, data.Authorization), user.ErrUnauthorized)

	active, err = svc.IsActive(ctx, uow, data)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.Refresh(ctx, uow, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidAuthorization)
	_, err = svc.Refresh(ctx, uow, "unknown")
	assert.ErrorIs(t, err, ErrInvalidAuthorization)
}
