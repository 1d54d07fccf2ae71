package adapters

import (
	"context"
	"log/slog"

	authentity "geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/games/usecase"
)

// UserFinder is the part of the auth user repository the lookup needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*authentity.User, error)
}

// creatorLookup resolves creator emails through the credential store.
type creatorLookup struct {
	users UserFinder
}

var _ usecase.CreatorLookup = (*creatorLookup)(nil)

// NewCreatorLookup creates a CreatorLookup over users.
func NewCreatorLookup(users UserFinder) *creatorLookup {
	return &creatorLookup{users: users}
}

// CreatorEmail returns the email of userID. Failures are logged at debug level
// and reported as a missing value.
func (l *creatorLookup) CreatorEmail(ctx context.Context, userID string) (string, bool) {
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		slog.Debug("creator lookup failed", "user_id", userID, "error", err)
		return "", false
	}
	return user.Email, user.Email != ""
}
