// Package entity defines the domain entities for the games feature.
package entity

import (
	"time"

	"geotagger/internal/platform/geo"
)

// Game is a geotagged image uploaded by a user.
type Game struct {
	ID     string
	UserID string
	Title  string

	// Lat and Lon are nil when the stored row has no usable coordinates.
	Lat *float64
	Lon *float64

	// Path is the object storage key of the image. It is unique per upload.
	Path      string
	CreatedAt time.Time

	// ImageURL is derived from Path on every read and never stored.
	ImageURL string

	// CreatorEmail is only filled by a single-game lookup, and only when the
	// creator could be resolved.
	CreatorEmail string
}

// Location returns the stored coordinates. ok is false when either is missing
// or out of range.
func (g *Game) Location() (p geo.Point, ok bool) {
	if g.Lat == nil || g.Lon == nil {
		return geo.Point{}, false
	}
	p = geo.Point{Lat: *g.Lat, Lon: *g.Lon}
	return p, p.Validate() == nil
}

// LocationCheck is the result of comparing a guess with a game's location.
type LocationCheck struct {
	DistanceMeters float64
	GameLat        float64
	GameLon        float64
}
