package adapters

import (
	"context"
	"fmt"
	"time"

	"geotagger/internal/feature/games/domain/entity"
	"geotagger/internal/feature/games/usecase"
	"geotagger/internal/platform/supabase"
)

// gameRow is a games row as returned by PostgREST. Older tables name the
// coordinate columns latitude/longitude instead of lat/lon.
type gameRow struct {
	ID        supabase.ID        `json:"id"`
	UserID    supabase.ID        `json:"user_id"`
	Title     *string            `json:"title"`
	Lat       *float64           `json:"lat"`
	Lon       *float64           `json:"lon"`
	Latitude  *float64           `json:"latitude"`
	Longitude *float64           `json:"longitude"`
	Path      *string            `json:"path"`
	CreatedAt supabase.Timestamp `json:"created_at"`
}

func (r *gameRow) toEntity() *entity.Game {
	g := &entity.Game{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Lat:       firstNonNil(r.Lat, r.Latitude),
		Lon:       firstNonNil(r.Lon, r.Longitude),
		CreatedAt: r.CreatedAt.Time,
	}
	if r.Title != nil {
		g.Title = *r.Title
	}
	if r.Path != nil {
		g.Path = *r.Path
	}
	return g
}

func firstNonNil(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// gameInsert is the insert payload. Empty user IDs and titles are omitted so
// the columns keep their defaults.
type gameInsert struct {
	UserID    string   `json:"user_id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Path      string   `json:"path"`
	CreatedAt string   `json:"created_at"`
}

// gameSupabase はGameRepositoryインターフェースのSupabase(PostgREST)実装です。
type gameSupabase struct {
	client *supabase.Client
	table  string
}

var _ usecase.GameRepository = (*gameSupabase)(nil)

// NewGameSupabase は指定されたクライアントとテーブル名でgameSupabaseを生成します。
func NewGameSupabase(client *supabase.Client, table string) *gameSupabase {
	return &gameSupabase{client: client, table: table}
}

// Create はゲームレコードを追加し、保存された行を返します。
func (r *gameSupabase) Create(ctx context.Context, g *entity.Game) (*entity.Game, error) {
	var rows []gameRow
	err := r.client.Insert(ctx, r.table, gameInsert{
		UserID:    g.UserID,
		Title:     g.Title,
		Lat:       g.Lat,
		Lon:       g.Lon,
		Path:      g.Path,
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("insert game: %w", err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrNoRowReturned
	}
	return rows[0].toEntity(), nil
}

// List は作成日時の降順でゲームを返します。
func (r *gameSupabase) List(ctx context.Context, limit, offset int) ([]*entity.Game, error) {
	var rows []gameRow
	params := supabase.NewParams().
		Select("*").
		Order("created_at", true).
		Limit(limit).
		Offset(offset)
	if err := r.client.Select(ctx, r.table, params, &rows); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	games := make([]*entity.Game, len(rows))
	for i := range rows {
		games[i] = rows[i].toEntity()
	}
	return games, nil
}

// FindByID はIDでゲームを取得します。
func (r *gameSupabase) FindByID(ctx context.Context, id string) (*entity.Game, error) {
	var rows []gameRow
	params := supabase.NewParams().Select("*").Eq("id", id).Limit(1)
	if err := r.client.Select(ctx, r.table, params, &rows); err != nil {
		// A non-numeric id against an integer key cannot match any row.
		if supabase.IsInvalidInputSyntax(err) {
			return nil, usecase.ErrGameNotFound
		}
		return nil, fmt.Errorf("select game: %w", err)
	}
	if len(rows) == 0 {
		return nil, usecase.ErrGameNotFound
	}
	return rows[0].toEntity(), nil
}
