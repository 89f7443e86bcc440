package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	access, err := NewAccessToken("secret", 123, 15)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)

	claim, err := VerifyAccessToken("secret", access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), claim.AccountID)
	assert.Contains(t, claim.Claims, "exp")
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	access, err := NewAccessToken("secret-a", 123, 15)
	require.NoError(t, err)

	_, err = VerifyAccessToken("secret-b", access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyAccessToken("secret", "definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 96, "48 random bytes hex encoded")

	h1 := HashRefreshRaw(tok.Raw)
	h2 := HashRefreshRaw(tok.Raw)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashRefreshRaw(tok.Raw+"x"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
}
