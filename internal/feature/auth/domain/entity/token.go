package entity

import "time"

// TokenClaims is the content of a signed access token.
type TokenClaims struct {
	UserID    string
	SessionID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
