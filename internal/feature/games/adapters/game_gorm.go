// Package adapters はgamesフィーチャーのリポジトリとストレージ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geotagger/internal/feature/games/domain/entity"
	"geotagger/internal/feature/games/usecase"
)

// GameModel is the GORM model for the games table.
type GameModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    *string   `gorm:"index;size:36"`
	Title     *string   `gorm:"size:255"`
	Lat       *float64  `gorm:"column:lat"`
	Lon       *float64  `gorm:"column:lon"`
	Path      string    `gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `gorm:"index;not null"`
}

// BeforeCreate assigns a random UUID when the caller did not set one.
func (m *GameModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToEntity converts the GORM model to a domain entity.
func (m *GameModel) ToEntity() *entity.Game {
	g := &entity.Game{
		ID:        m.ID,
		Lat:       m.Lat,
		Lon:       m.Lon,
		Path:      m.Path,
		CreatedAt: m.CreatedAt,
	}
	if m.UserID != nil {
		g.UserID = *m.UserID
	}
	if m.Title != nil {
		g.Title = *m.Title
	}
	return g
}

// GameModelFromEntity converts a domain entity to a GORM model. Empty user IDs
// and titles are stored as NULL.
func GameModelFromEntity(g *entity.Game) *GameModel {
	return &GameModel{
		ID:        g.ID,
		UserID:    nullable(g.UserID),
		Title:     nullable(g.Title),
		Lat:       g.Lat,
		Lon:       g.Lon,
		Path:      g.Path,
		CreatedAt: g.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Migrate creates or updates the games table.
func Migrate(db *gorm.DB, table string) error {
	return db.Table(table).AutoMigrate(&GameModel{})
}

// gameGorm はGameRepositoryインターフェースのPostgres実装です。
type gameGorm struct {
	db    *gorm.DB
	table string
}

var _ usecase.GameRepository = (*gameGorm)(nil)

// NewGameGorm は指定されたgorm.DB接続とテーブル名でgameGormを生成します。
func NewGameGorm(db *gorm.DB, table string) *gameGorm {
	return &gameGorm{db: db, table: table}
}

func (r *gameGorm) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// Create はゲームレコードを追加し、保存された行を返します。
func (r *gameGorm) Create(ctx context.Context, g *entity.Game) (*entity.Game, error) {
	model := GameModelFromEntity(g)
	if err := r.query(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model.ToEntity(), nil
}

// List は作成日時の降順でゲームを返します。
func (r *gameGorm) List(ctx context.Context, limit, offset int) ([]*entity.Game, error) {
	var models []GameModel
	if err := r.query(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, err
	}

	games := make([]*entity.Game, len(models))
	for i := range models {
		games[i] = models[i].ToEntity()
	}
	return games, nil
}

// FindByID はIDでゲームを取得します。
func (r *gameGorm) FindByID(ctx context.Context, id string) (*entity.Game, error) {
	var m GameModel
	if err := r.query(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrGameNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}
