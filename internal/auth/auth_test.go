package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	now := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("super-secret"),
		Issuer:        "metrodoc",
		TokenTTL:      time.Hour,
		Clock:         fixedClock(now),
	})
	require.NoError(t, err)

	token, exp, err := issuer.Issue("user-1", "admin@metrodoc.ai", "admin")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin@metrodoc.ai", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	unverified, err := ExpiryUnverified(token)
	require.NoError(t, err)
	assert.True(t, unverified.Equal(exp))
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("a"), Issuer: "metrodoc", TokenTTL: time.Minute, Clock: fixedClock(now)})
	require.NoError(t, err)
	token, _, err := issuer.Issue("user-1", "", "")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("a"), Issuer: "metrodoc", Clock: fixedClock(now.Add(time.Hour))})
		require.NoError(t, err)
		_, err = later.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("b"), Issuer: "metrodoc", Clock: fixedClock(now)})
		require.NoError(t, err)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte("a"), Issuer: "someone-else", Clock: fixedClock(now)})
		require.NoError(t, err)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "x"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Validate(none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := issuer.Validate("  ")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, _, err := issuer.Issue(" ", "", "")
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(TokenIssuerConfig{})
	assert.ErrorIs(t, err, ErrMissingSigningSecret)
}

func TestExpiryUnverified_Malformed(t *testing.T) {
	_, err := ExpiryUnverified("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "admin123"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong-one"), ErrPasswordMismatch)

	_, err = HashPassword("123")
	assert.Error(t, err)
}
