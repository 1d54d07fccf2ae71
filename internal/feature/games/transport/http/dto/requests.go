package dto

// CheckLocationReq is the body of a location guess. Pointers distinguish a
// missing coordinate from 0.
type CheckLocationReq struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// ListGamesQuery is the pagination window of the games listing.
type ListGamesQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
