package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/auth/usecase"
)

// sessionGorm is a Postgres implementation of the SessionRepository interface.
type sessionGorm struct {
	db    *gorm.DB
	table string
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a new instance of sessionGorm.
func NewSessionGorm(db *gorm.DB, table string) *sessionGorm {
	return &sessionGorm{db: db, table: table}
}

func (r *sessionGorm) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// Create persists a new session to the database.
func (r *sessionGorm) Create(ctx context.Context, session *entity.Session) error {
	return r.query(ctx).Create(SessionModelFromEntity(session)).Error
}

// FindByID retrieves a session by its ID.
func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.query(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke marks a session as revoked by its ID.
func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	result := r.query(ctx).
		Where("id = ?", id).
		Update("revoked_at", time.Now().UTC())

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes all active sessions for a given user.
func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID string) error {
	return r.query(ctx).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now().UTC()).Error
}
