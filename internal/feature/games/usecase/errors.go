// Package usecase implements the business logic for the games feature.
package usecase

import "errors"

var (
	// ErrGameNotFound is returned when no game matches the given ID.
	ErrGameNotFound = errors.New("game not found")

	// ErrNoRowReturned is returned when the store accepted an insert but did not return the row.
	ErrNoRowReturned = errors.New("store returned no row")
)
