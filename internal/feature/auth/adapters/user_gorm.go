// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/auth/usecase"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのPostgres実装です。
// GORMを使用してデータベース操作を行います。
type userGorm struct {
	db    *gorm.DB
	table string
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続とテーブル名でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB, table string) *userGorm {
	return &userGorm{db: db, table: table}
}

func (r *userGorm) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if u == nil {
		return nil, errors.New("nil user")
	}
	model := UserModelFromEntity(u)
	if err := r.query(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, usecase.ErrEmailAlreadyExists
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) first(ctx context.Context, cond string, arg any) (*entity.User, error) {
	var m UserModel
	if err := r.query(ctx).Where(cond, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// UpdatePassword はパスワードハッシュと更新日時を更新します。
func (r *userGorm) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	result := r.query(ctx).
		Where("email = ?", email).
		Updates(map[string]any{"password_hash": passwordHash, "updated_at": updatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Sample は最大limit件のユーザーを返します。
func (r *userGorm) Sample(ctx context.Context, limit int) ([]*entity.User, error) {
	var models []UserModel
	if err := r.query(ctx).Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*entity.User, len(models))
	for i := range models {
		users[i] = models[i].ToEntity()
	}
	return users, nil
}

// isUniqueViolation detects duplicate keys both through gorm's translated
// error and the raw pgx error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
