package dto

import (
	"time"

	"geotagger/internal/feature/auth/domain/entity"
)

// StatusSuccess is the status field of successful auth responses.
const StatusSuccess = "success"

// UserRes is the public view of a user. It has no password hash field, so the
// hash cannot leak through serialization.
type UserRes struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserRes converts a user entity to its public view.
func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

// NewUserResList converts users to their public views. The result is never nil.
func NewUserResList(users []*entity.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserRes(u))
	}
	return out
}

// RegisterRes is the response of a successful registration.
type RegisterRes struct {
	Status string  `json:"status"`
	User   UserRes `json:"user"`
}

// LoginRes is the response of a successful login.
type LoginRes struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	User        UserRes   `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MessageRes is returned by endpoints that only report success.
type MessageRes struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StoreCheckRes is the response of the credential store connectivity check.
type StoreCheckRes struct {
	Success bool      `json:"success"`
	Data    []UserRes `json:"data"`
}
