// Package auth issues and validates bearer tokens for the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenType is reported alongside issued access tokens
const TokenType = "bearer"

var (
	// ErrInvalidCredentials is returned when a username or password does not match
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken is returned for malformed, expired or forged tokens
	ErrInvalidToken = errors.New("could not validate credentials")
)

// Authenticator checks passwords against bcrypt hashes and signs HS256 tokens
// whose subject is the username.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	users  map[string]string
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator. users maps usernames to bcrypt
// password hashes.
func NewAuthenticator(secret string, ttl time.Duration, users map[string]string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// Login verifies the credentials and returns a fresh access token
func (a *Authenticator) Login(username, password string) (string, error) {
	hash, ok := a.users[username]
	if !ok || !CheckPassword(password, hash) {
		return "", ErrInvalidCredentials
	}
	return a.IssueToken(username)
}

// IssueToken signs a token for username that expires after the configured TTL
func (a *Authenticator) IssueToken(username string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken returns the username a valid token was issued to
func (a *Authenticator) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// HashPassword returns the bcrypt hash of password at the given cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
