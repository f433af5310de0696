package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password1", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "password1", hash)

	require.True(t, VerifyPassword(hash, "password1"))
	require.False(t, VerifyPassword(hash, "password2"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	h2, err := HashPassword("same-input", 4)
	require.NoError(t, err)

	// bcrypt embeds a random salt, so equal inputs must not hash equal.
	require.NotEqual(t, h1, h2)
	require.True(t, VerifyPassword(h1, "same-input"))
	require.True(t, VerifyPassword(h2, "same-input"))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	// A garbage hash fails verification instead of erroring or panicking.
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "whatever"))
	require.False(t, VerifyPassword("", "whatever"))
}
