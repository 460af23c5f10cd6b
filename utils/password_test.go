package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	// Federated accounts have no local password and must never authenticate locally.
	assert.False(t, CheckPassword("", "anything"))
	assert.False(t, CheckPassword("", ""))
}
