package jwtmw

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"geotagger/internal/feature/auth/domain/entity"
)

// ErrInvalidToken is returned when a token is malformed, has a bad signature or
// has expired.
var ErrInvalidToken = errors.New("invalid token")

// accessClaims is the JWT payload. sub carries the user id and sid the session id.
type accessClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	secret []byte
}

// NewManager creates a Manager for the given secret.
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// GenerateToken signs claims. IssuedAt and ExpiresAt are taken from claims so
// the token and its session expire together.
func (m *Manager) GenerateToken(claims entity.TokenClaims) (string, error) {
	payload := accessClaims{
		SessionID: claims.SessionID,
		Email:     claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of tokenStr and returns its claims.
func (m *Manager) ParseToken(tokenStr string) (entity.TokenClaims, error) {
	var payload accessClaims
	token, err := jwt.ParseWithClaims(tokenStr, &payload, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		// Only HMAC-SHA256 is accepted; this also rejects alg=none.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return entity.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if payload.Subject == "" || payload.SessionID == "" {
		return entity.TokenClaims{}, fmt.Errorf("%w: missing sub or sid", ErrInvalidToken)
	}

	claims := entity.TokenClaims{
		UserID:    payload.Subject,
		SessionID: payload.SessionID,
		Email:     payload.Email,
		ExpiresAt: payload.ExpiresAt.Time,
	}
	if payload.IssuedAt != nil {
		claims.IssuedAt = payload.IssuedAt.Time
	}
	return claims, nil
}

// RandomSecret returns a random 256-bit secret. It is used when no JWT secret is
// configured; tokens then stop verifying after a restart.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
