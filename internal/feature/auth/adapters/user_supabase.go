package adapters

import (
	"context"
	"fmt"
	"time"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/auth/usecase"
	"geotagger/internal/platform/supabase"
)

// userRow is a users row as returned by PostgREST.
type userRow struct {
	ID           supabase.ID        `json:"id"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"password_hash"`
	IsActive     *bool              `json:"is_active"`
	CreatedAt    supabase.Timestamp `json:"created_at"`
	UpdatedAt    supabase.Timestamp `json:"updated_at"`
}

func (r *userRow) toEntity() *entity.User {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &entity.User{
		ID:           r.ID.String(),
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsActive:     active,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

// userInsert is the insert payload. id is left to the table default.
type userInsert struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// userSupabase はUserRepositoryインターフェースのSupabase(PostgREST)実装です。
type userSupabase struct {
	client *supabase.Client
	table  string
}

var _ usecase.UserRepository = (*userSupabase)(nil)

// NewUserSupabase は指定されたクライアントとテーブル名でuserSupabaseを生成します。
func NewUserSupabase(client *supabase.Client, table string) *userSupabase {
	return &userSupabase{client: client, table: table}
}

// Create inserts the user and returns the row echoed by PostgREST.
func (r *userSupabase) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	var rows []userRow
	err := r.client.Insert(ctx, r.table, userInsert{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, &rows)
	if err != nil {
		if supabase.IsUniqueViolation(err) || supabase.IsConflict(err) {
			return nil, usecase.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrNoRowReturned
	}
	return rows[0].toEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userSupabase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email", email)
}

// FindByID はIDでユーザーを取得します。
func (r *userSupabase) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id", id)
}

func (r *userSupabase) first(ctx context.Context, column, value string) (*entity.User, error) {
	var rows []userRow
	params := supabase.NewParams().Select("*").Eq(column, value).Limit(1)
	if err := r.client.Select(ctx, r.table, params, &rows); err != nil {
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrUserNotFound
	}
	return rows[0].toEntity(), nil
}

// UpdatePassword はパスワードハッシュと更新日時を更新します。
func (r *userSupabase) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	var rows []userRow
	patch := map[string]string{
		"password_hash": passwordHash,
		"updated_at":    updatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.client.Update(ctx, r.table, supabase.NewParams().Eq("email", email), patch, &rows); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if len(rows) == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Sample は最大limit件のユーザーを返します。
func (r *userSupabase) Sample(ctx context.Context, limit int) ([]*entity.User, error) {
	var rows []userRow
	if err := r.client.Select(ctx, r.table, supabase.NewParams().Select("*").Limit(limit), &rows); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	users := make([]*entity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	return users, nil
}
