package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour, nil)

	token, err := issuer.Issue("u-1", "alice@example.com")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Now()
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour, func() time.Time { return now })

	token, err := issuer.Issue("u-1", "alice@example.com")
	require.NoError(t, err)

	// Advance the clock past the TTL.
	now = now.Add(2 * time.Hour)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_Invalid(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour, nil)

	_, err := issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	signer := NewTokenIssuer([]byte("secret-a"), time.Hour, nil)
	verifier := NewTokenIssuer([]byte("secret-b"), time.Hour, nil)

	token, err := signer.Issue("u-1", "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
