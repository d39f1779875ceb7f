package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordVerifies(t *testing.T) {
	digest, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", digest)

	require.True(t, VerifyPassword(digest, "secret123"))
	require.False(t, VerifyPassword(digest, "secret124"))
	require.False(t, VerifyPassword(digest, ""))
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("secret123")
	require.NoError(t, err)
	second, err := HashPassword("secret123")
	require.NoError(t, err)

	// Each digest carries its own salt, yet both verify.
	require.NotEqual(t, first, second)
	require.True(t, VerifyPassword(first, "secret123"))
	require.True(t, VerifyPassword(second, "secret123"))
}

// The unknown-email login path compares against a real digest at the default
// cost; a malformed one would make bcrypt bail out early.
func TestUnknownUserDigestIsWellFormed(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(unknownUserDigest))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
	require.False(t, VerifyPassword(unknownUserDigest, "secret123"))
}
