package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordMatchesPlain(t *testing.T) {
	assert.True(t, PasswordMatches("geheim", "geheim"))
	assert.False(t, PasswordMatches("geheim", "Geheim"))
	assert.False(t, PasswordMatches("geheim", "geheim "))
	assert.False(t, PasswordMatches("", ""))
	assert.False(t, PasswordMatches("geheim", ""))
}

func TestPasswordMatchesBcrypt(t *testing.T) {
	hash, err := HashPassword("geheim")
	require.NoError(t, err)
	require.True(t, IsBcryptHash(hash))

	assert.True(t, PasswordMatches(hash, "geheim"))
	assert.False(t, PasswordMatches(hash, "falsch"))
	assert.False(t, PasswordMatches(hash, hash))
}

func TestSessionRoundTrip(t *testing.T) {
	m, err := NewSessionManager("test-secret", time.Hour, "tornado")
	require.NoError(t, err)

	token, expiresAt, err := m.Issue(AdminSubject)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.Subject)
	assert.NoError(t, m.Validate(token))
}

func TestSessionExpired(t *testing.T) {
	m, err := NewSessionManager("test-secret", time.Hour, "tornado")
	require.NoError(t, err)

	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	token, _, err := m.Issue(AdminSubject)
	require.NoError(t, err)

	m.now = time.Now
	assert.ErrorIs(t, m.Validate(token), ErrExpiredToken)
}

func TestSessionRejectsForeignTokens(t *testing.T) {
	m, err := NewSessionManager("test-secret", time.Hour, "tornado")
	require.NoError(t, err)
	other, err := NewSessionManager("other-secret", time.Hour, "tornado")
	require.NoError(t, err)

	foreign, _, err := other.Issue(AdminSubject)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Validate(foreign), ErrInvalidToken)

	// alg=none
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Validate(unsigned), ErrInvalidToken)

	assert.ErrorIs(t, m.Validate("garbage"), ErrInvalidToken)
}

func TestNewSessionManagerValidation(t *testing.T) {
	_, err := NewSessionManager("", time.Hour, "")
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewSessionManager("s", 0, "")
	assert.Error(t, err)
}
