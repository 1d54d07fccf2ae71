package adapters

import (
	"context"
	"fmt"
	"time"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/auth/usecase"
	"geotagger/internal/platform/supabase"
)

// sessionRow is a sessions row as exchanged with PostgREST.
type sessionRow struct {
	ID        string              `json:"id"`
	UserID    supabase.ID         `json:"user_id"`
	UserAgent string              `json:"user_agent"`
	IPAddress string              `json:"ip_address"`
	CreatedAt supabase.Timestamp  `json:"created_at"`
	ExpiresAt supabase.Timestamp  `json:"expires_at"`
	RevokedAt *supabase.Timestamp `json:"revoked_at"`
}

func (r *sessionRow) toEntity() *entity.Session {
	s := &entity.Session{
		ID:        r.ID,
		UserID:    r.UserID.String(),
		UserAgent: r.UserAgent,
		IPAddress: r.IPAddress,
		CreatedAt: r.CreatedAt.Time,
		ExpiresAt: r.ExpiresAt.Time,
	}
	if r.RevokedAt != nil && !r.RevokedAt.IsZero() {
		t := r.RevokedAt.Time
		s.RevokedAt = &t
	}
	return s
}

// sessionSupabase stores sessions in a PostgREST table.
type sessionSupabase struct {
	client *supabase.Client
	table  string
}

var _ usecase.SessionRepository = (*sessionSupabase)(nil)

// NewSessionSupabase creates a new instance of sessionSupabase.
func NewSessionSupabase(client *supabase.Client, table string) *sessionSupabase {
	return &sessionSupabase{client: client, table: table}
}

// Create persists a new session.
func (r *sessionSupabase) Create(ctx context.Context, s *entity.Session) error {
	row := map[string]any{
		"id":         s.ID,
		"user_id":    s.UserID,
		"user_agent": s.UserAgent,
		"ip_address": s.IPAddress,
		"created_at": s.CreatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": s.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.client.Insert(ctx, r.table, row, nil); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *sessionSupabase) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var rows []sessionRow
	params := supabase.NewParams().Select("*").Eq("id", id).Limit(1)
	if err := r.client.Select(ctx, r.table, params, &rows); err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrSessionNotFound
	}
	return rows[0].toEntity(), nil
}

// Revoke marks a session as revoked.
func (r *sessionSupabase) Revoke(ctx context.Context, id string) error {
	var rows []sessionRow
	if err := r.client.Update(ctx, r.table, supabase.NewParams().Eq("id", id), revokedPatch(), &rows); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if len(rows) == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes every active session of a user.
func (r *sessionSupabase) RevokeAllByUserID(ctx context.Context, userID string) error {
	params := supabase.NewParams().Eq("user_id", userID).IsNull("revoked_at")
	if err := r.client.Update(ctx, r.table, params, revokedPatch(), nil); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

func revokedPatch() map[string]string {
	return map[string]string{"revoked_at": time.Now().UTC().Format(time.RFC3339Nano)}
}
