package services

import (
	"testing"
	"time"

	"clapo/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundtrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	user := &models.UserFromAuth{ID: "user-1", Username: "alice", Wallet: "0xabc"}
	token, err := authentication.CreateToken(user, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := authentication.Validate(token)
	require.NoError(t, err)
	require.Equal(t, user, parsed)
}

func TestAuthenticationWrongSecret(t *testing.T) {
	issuer, err := NewAuthentication("issuer-secret")
	require.NoError(t, err)
	verifier, err := NewAuthentication("other-secret")
	require.NoError(t, err)

	token, err := issuer.CreateToken(&models.UserFromAuth{ID: "user-1"}, time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
}

func TestAuthenticationExpiredToken(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{ID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = authentication.Validate(token)
	require.Error(t, err)
}

func TestAuthenticationMissingID(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{Username: "ghost"}, time.Minute)
	require.NoError(t, err)

	_, err = authentication.Validate(token)
	require.Error(t, err)
}

func TestNewAuthenticationEmptySecret(t *testing.T) {
	_, err := NewAuthentication("")
	require.Error(t, err)
}
