package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, err := GenerateResetToken()
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, ResetTokenBytes)

		_, dup := seen[token]
		assert.False(t, dup, "token generated twice")
		seen[token] = struct{}{}
	}
}

func TestHashResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)

	hash := HashResetToken(token)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashResetToken(token))
	assert.NotEqual(t, hash, HashResetToken(token+"x"))
	assert.NotContains(t, hash, token)
}
