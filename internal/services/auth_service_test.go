package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *fakeStore) {
	t.Helper()
	f := newFakeStore()
	svc := NewAuthService(f, "test-secret", time.Hour)
	svc.now = func() time.Time { return fixedNow }
	require.NoError(t, svc.Register(context.Background(), "admin", "admin123"))
	return svc, f
}

func TestAuthService_LoginIssuesParsableToken(t *testing.T) {
	svc, f := newAuthService(t)

	token, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.NotEmpty(t, claims.Subject)
	assert.True(t, fixedNow.Add(time.Hour).Equal(claims.ExpiresAt.Time))
	assert.NotEqual(t, "admin123", f.users["admin"].Password, "password is stored hashed")
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ParseTokenRejectsExpired(t *testing.T) {
	svc, _ := newAuthService(t)
	token, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ParseTokenRejectsOtherSecret(t *testing.T) {
	svc, _ := newAuthService(t)
	other := NewAuthService(svc.store, "another-secret", time.Hour)
	other.now = svc.now

	token, err := other.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ParseTokenRejectsNoneAlgorithm(t *testing.T) {
	svc, _ := newAuthService(t)
	claims := Claims{Username: "admin", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	assert.Error(t, svc.Register(ctx, "admin", "again"), "duplicate username")
	assert.Error(t, svc.Register(ctx, " ", "pw"))
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	svc, f := newAuthService(t)
	f.err = errors.New("db down")

	_, err := svc.Login(context.Background(), "admin", "admin123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}
