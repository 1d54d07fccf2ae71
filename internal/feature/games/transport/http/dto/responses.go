// Package dto defines the request and response bodies of the games endpoints.
package dto

import (
	"time"

	"geotagger/internal/feature/games/domain/entity"
)

// StatusSuccess is the status field of a successful creation.
const StatusSuccess = "success"

// GameRes is the public view of a game. Missing user IDs and titles are
// serialized as null; user_email is only present when the creator was resolved.
type GameRes struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Title     *string   `json:"title"`
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	ImageURL  string    `json:"image_url,omitempty"`
	Email     string    `json:"user_email,omitempty"`
}

// NewGameRes converts a game entity to its public view.
func NewGameRes(g *entity.Game) GameRes {
	return GameRes{
		ID:        g.ID,
		UserID:    optional(g.UserID),
		Title:     optional(g.Title),
		Lat:       g.Lat,
		Lon:       g.Lon,
		Path:      g.Path,
		CreatedAt: g.CreatedAt.UTC(),
		ImageURL:  g.ImageURL,
		Email:     g.CreatorEmail,
	}
}

// NewGameResList converts games to their public views. The result is never nil
// so an empty listing serializes as [].
func NewGameResList(games []*entity.Game) []GameRes {
	out := make([]GameRes, 0, len(games))
	for _, g := range games {
		out = append(out, NewGameRes(g))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateGameRes is the response of a successful upload.
type CreateGameRes struct {
	Status string  `json:"status"`
	Game   GameRes `json:"game"`
}

// CheckLocationRes is the distance between a guess and the game's location.
type CheckLocationRes struct {
	DistanceMeters float64 `json:"distance_meters"`
	GameLat        float64 `json:"game_lat"`
	GameLon        float64 `json:"game_lon"`
}

// NewCheckLocationRes converts a location check to its response body.
func NewCheckLocationRes(c *entity.LocationCheck) CheckLocationRes {
	return CheckLocationRes{
		DistanceMeters: c.DistanceMeters,
		GameLat:        c.GameLat,
		GameLon:        c.GameLon,
	}
}
