package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := IssueToken("secret", 42, "mechanic", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	uid, role, err := VerifyToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "mechanic", role)
}

func TestTokenExpired(t *testing.T) {
	tok, err := IssueToken("secret", 7, "admin", -1)
	require.NoError(t, err)

	_, _, err = VerifyToken("secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := IssueToken("secret", 7, "admin", 60)
	require.NoError(t, err)

	_, _, err = VerifyToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenGarbage(t *testing.T) {
	_, _, err := VerifyToken("secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
