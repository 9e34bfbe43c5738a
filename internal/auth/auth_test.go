package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	hash, err := svc.HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, svc.CheckPassword("secret123", hash))
	assert.False(t, svc.CheckPassword("wrong-password", hash))
	assert.False(t, svc.CheckPassword("secret123", "not-a-bcrypt-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("64f1c0d2a1b2c3d4e5f60718")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, err := svc.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "64f1c0d2a1b2c3d4e5f60718", sub)
}

func TestParseToken_Errors(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	t.Run("expired token", func(t *testing.T) {
		// NewService clamps non-positive expiry, so sign with the raw struct.
		expired := &Service{jwtSecret: []byte("test-secret"), tokenExp: -time.Hour}
		token, err := expired.GenerateToken("64f1c0d2a1b2c3d4e5f60718")
		assert.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("another-secret", time.Hour)
		token, err := other.GenerateToken("64f1c0d2a1b2c3d4e5f60718")
		assert.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ParseToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, err := svc.ExtractTokenFromHeader("Bearer abc123")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", token)

	cases := []string{
		"",
		"abc123",
		"Bearer",
		"Bearer ",
		"Basic abc123",
		"Bearer abc 123",
	}
	for _, header := range cases {
		_, err := svc.ExtractTokenFromHeader(header)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}
