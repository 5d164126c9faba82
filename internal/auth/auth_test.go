package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthenticator("test-signing-key", 30*time.Minute, map[string]string{"admin": hash})
}

func TestLogin(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.Login("admin", "secret")
	require.NoError(t, err)

	username, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestLogin_Rejected(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login("nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken_Expired(t *testing.T) {
	a := newTestAuthenticator(t)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return issued }

	token, err := a.IssueToken("admin")
	require.NoError(t, err)

	a.now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = a.ValidateToken(token)
	require.NoError(t, err)

	a.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongKey(t *testing.T) {
	a := newTestAuthenticator(t)
	other := NewAuthenticator("another-key", time.Minute, nil)

	token, err := other.IssueToken("admin")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	a := newTestAuthenticator(t)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := a.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	a := newTestAuthenticator(t)

	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingSubject(t *testing.T) {
	a := newTestAuthenticator(t)

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("pa55", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword("pa55", hash))
	assert.False(t, CheckPassword("nope", hash))
	assert.False(t, CheckPassword("pa55", "not-a-hash"))
}
