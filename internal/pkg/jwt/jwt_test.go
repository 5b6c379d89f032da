package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	token, err := GenerateToken(userID, secret, "authenticated", time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(token, secret, "authenticated")
	require.NoError(t, err)
	require.Equal(t, userID, parsed)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), []byte("right"), "authenticated", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong"), "authenticated")
	require.Error(t, err)
}

func TestTokenWrongAudience(t *testing.T) {
	token, err := GenerateToken(uuid.New(), []byte("secret"), "authenticated", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret"), "other-audience")
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), []byte("secret"), "authenticated", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret"), "authenticated")
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", []byte("secret"), "authenticated")
	require.Error(t, err)
}
