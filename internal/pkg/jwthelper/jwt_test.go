package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	key := []byte("secret")

	token, err := GenerateToken(key, 7, "curl/8.0")
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "curl/8.0", claims.UserAgent)
}

func TestParseToken_Invalid(t *testing.T) {
	key := []byte("secret")

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "wrong key",
			token: func() string {
				token, _ := GenerateToken([]byte("other"), 7, "")
				return token
			},
		},
		{
			name: "expired",
			token: func() string {
				token, _ := GenerateTokenWithTTL(key, 7, "", -time.Minute)
				return token
			},
		},
		{
			name:  "garbage",
			token: func() string { return "not-a-token" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(key, tt.token())
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
