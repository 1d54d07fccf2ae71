// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
type User struct {
	// ID is assigned by the store. It is kept opaque: the hosted store may use
	// integer or uuid keys.
	ID string

	// Email is unique across all users. Surrounding whitespace is trimmed before
	// it reaches the store; case handling is left to the store.
	Email string

	// PasswordHash is the bcrypt digest of the password.
	// It must never be copied into a response payload.
	PasswordHash string

	// IsActive defaults to true on registration.
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
