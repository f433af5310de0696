package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewAccessToken_ParsesBack(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken(testSecret, 42, "USER", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken(testSecret, at.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.Equal(t, "USER", claims.Role)
}

func TestNewAccessToken_UniquePerCall(t *testing.T) {
	t.Parallel()

	// Same user, same second: the jti claim still makes the tokens differ.
	a1, err := NewAccessToken(testSecret, 42, "USER", 15)
	require.NoError(t, err)
	a2, err := NewAccessToken(testSecret, 42, "USER", 15)
	require.NoError(t, err)
	require.NotEqual(t, a1.Token, a2.Token)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	at, err := NewAccessToken(testSecret, 1, "USER", 15)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", at.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	// Sign a token that expired a minute ago.
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": "USER",
		"exp":  time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":  time.Now().UTC().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_UnsignedAlgorithmRejected(t *testing.T) {
	t.Parallel()

	claims := jwt.MapClaims{
		"sub": float64(7),
		"exp": time.Now().UTC().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParseAccessToken(testSecret, "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken_FormatAndUniqueness(t *testing.T) {
	t.Parallel()

	r1, err := NewRefreshToken(30)
	require.NoError(t, err)
	r2, err := NewRefreshToken(30)
	require.NoError(t, err)

	// 48 random bytes render as 96 hex characters.
	require.Len(t, r1.Raw, 96)
	require.NotEqual(t, r1.Raw, r2.Raw)
	require.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), r1.Exp, 5*time.Second)
}

func TestHashRefreshRaw_StableAndDistinct(t *testing.T) {
	t.Parallel()

	h := HashRefreshRaw("some-raw-token")
	require.Len(t, h, 64) // sha256 hex
	require.Equal(t, h, HashRefreshRaw("some-raw-token"))
	require.NotEqual(t, h, HashRefreshRaw("some-raw-tokeN"))
	require.NotEqual(t, h, "some-raw-token")
}
