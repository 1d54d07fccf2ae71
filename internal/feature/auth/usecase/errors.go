// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

// Sentinel errors returned by the repositories. The usecase classifies them into
// apperr kinds before they reach the transport layer.
var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoRowReturned is returned when the store accepted an insert but did not return the row.
	ErrNoRowReturned = errors.New("store returned no row")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")
)
