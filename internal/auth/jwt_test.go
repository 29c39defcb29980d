package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Issue(42, "jay@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.UserID)
	assert.Equal(t, "jay@example.com", principal.Email)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issued, err := NewTokenManager("secret-a", time.Hour).Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(issued)
	assert.Error(t, err)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	tokens := NewTokenManager("test-secret", -time.Minute)

	token, err := tokens.Issue(1, "a@example.com")
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	assert.Error(t, err)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	_, err := tokens.Verify("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2secret")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2secret", hash)

	assert.True(t, CheckPassword(hash, "hunter2secret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
