package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"geotagger/internal/feature/games/domain/entity"
	"geotagger/internal/platform/geo"
	"geotagger/internal/shared/apperr"
)

const (
	// DefaultListLimit は一覧取得のデフォルト件数です。
	DefaultListLimit = 100
	// MaxListLimit は一覧取得の最大件数です。
	MaxListLimit = 1000
	// DefaultMaxImageBytes is the upload limit used when none is configured.
	DefaultMaxImageBytes int64 = 10 << 20
	// DefaultContentType is stored when the client sends no content type.
	DefaultContentType = "image/jpeg"

	storagePrefix = "games/"
)

// allowedExtensions lists the accepted image file extensions, lower case.
var allowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}

// GameRepository はゲームレコードの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type GameRepository interface {
	// Create inserts game and returns the stored row.
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)

	// List returns games ordered by created_at descending.
	List(ctx context.Context, limit, offset int) ([]*entity.Game, error)

	// FindByID returns ErrGameNotFound when no game matches.
	FindByID(ctx context.Context, id string) (*entity.Game, error)
}

// ObjectStorage stores uploaded images.
type ObjectStorage interface {
	// Upload stores data at path. An existing object is never overwritten.
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL resolves the public URL of path.
	PublicURL(path string) string
}

// CreatorLookup resolves the email of a game's creator. ok is false when the
// email is unavailable for any reason.
type CreatorLookup interface {
	CreatorEmail(ctx context.Context, userID string) (email string, ok bool)
}

// CreateGameInput carries an uploaded image and its metadata.
type CreateGameInput struct {
	Image       []byte
	Filename    string
	ContentType string
	Lat         float64
	Lon         float64
	Title       string
	UserID      string
}

// gamesUsecase はゲーム操作のビジネスロジックを実装します。
type gamesUsecase struct {
	games         GameRepository
	storage       ObjectStorage
	creators      CreatorLookup
	maxImageBytes int64
	now           func() time.Time
	newKey        func() string
}

// NewGamesUsecase はgamesUsecaseの新しいインスタンスを生成します。
// creators may be nil, in which case games are never enriched with an email.
func NewGamesUsecase(games GameRepository, storage ObjectStorage, creators CreatorLookup, maxImageBytes int64) *gamesUsecase {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &gamesUsecase{
		games:         games,
		storage:       storage,
		creators:      creators,
		maxImageBytes: maxImageBytes,
		now:           func() time.Time { return time.Now().UTC() },
		newKey:        uuid.NewString,
	}
}

// MaxImageBytes returns the upload limit.
func (u *gamesUsecase) MaxImageBytes() int64 {
	return u.maxImageBytes
}

// imageExtension returns the lower-cased extension of filename without the dot.
func imageExtension(filename string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", apperr.New(apperr.KindInvalidInput, "File must have an extension")
	}
	ext = strings.ToLower(ext)
	if !slices.Contains(allowedExtensions, ext) {
		return "", apperr.Newf(apperr.KindInvalidInput,
			"Invalid file type. Allowed types: %s", strings.Join(allowedExtensions, ", "))
	}
	return ext, nil
}

// CreateGame はバリデーション後に画像をアップロードし、ゲームレコードを作成します。
func (u *gamesUsecase) CreateGame(ctx context.Context, in CreateGameInput) (*entity.Game, error) {
	ext, err := imageExtension(in.Filename)
	if err != nil {
		return nil, err
	}
	if len(in.Image) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "Empty file")
	}
	if int64(len(in.Image)) > u.maxImageBytes {
		return nil, apperr.Newf(apperr.KindInvalidInput, "File too large (max %d bytes)", u.maxImageBytes)
	}
	if err := (geo.Point{Lat: in.Lat, Lon: in.Lon}).Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "Invalid coordinates", err)
	}

	key := storagePrefix + u.newKey() + "." + ext
	contentType := in.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	if err := u.storage.Upload(ctx, key, in.Image, contentType); err != nil {
		return nil, apperr.Wrap(apperr.KindUpload, "Failed to upload image", err)
	}
	imageURL := u.storage.PublicURL(key)

	lat, lon := in.Lat, in.Lon
	created, err := u.games.Create(ctx, &entity.Game{
		UserID:    in.UserID,
		Title:     strings.TrimSpace(in.Title),
		Lat:       &lat,
		Lon:       &lon,
		Path:      key,
		CreatedAt: u.now(),
	})
	if err != nil {
		// The uploaded object is left in place; keys are never reused.
		return nil, apperr.Wrap(apperr.KindInsert, "Failed to create game", err)
	}

	created.ImageURL = imageURL
	return created, nil
}

// normalizeWindow clamps pagination parameters to the supported range.
func normalizeWindow(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListGames は作成日時の降順でゲームを返します。
func (u *gamesUsecase) ListGames(ctx context.Context, limit, offset int) ([]*entity.Game, error) {
	limit, offset = normalizeWindow(limit, offset)

	games, err := u.games.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to list games", err)
	}
	if games == nil {
		games = []*entity.Game{}
	}
	for _, g := range games {
		u.attachImageURL(g)
	}
	return games, nil
}

// GetGame はIDでゲームを取得し、画像URLと作成者のメールアドレスを付与します。
func (u *gamesUsecase) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	u.attachImageURL(game)

	if u.creators != nil && game.UserID != "" {
		if email, ok := u.creators.CreatorEmail(ctx, game.UserID); ok {
			game.CreatorEmail = email
		}
	}
	return game, nil
}

// CheckLocation returns the haversine distance between a guess and the game's
// stored location. No threshold is applied.
func (u *gamesUsecase) CheckLocation(ctx context.Context, id string, lat, lon float64) (*entity.LocationCheck, error) {
	guess := geo.Point{Lat: lat, Lon: lon}
	if err := guess.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "Invalid coordinates", err)
	}

	game, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	stored, ok := game.Location()
	if !ok {
		return nil, apperr.New(apperr.KindInvalidInput, "Game has no valid coordinates")
	}

	return &entity.LocationCheck{
		DistanceMeters: geo.Distance(guess, stored),
		GameLat:        stored.Lat,
		GameLon:        stored.Lon,
	}, nil
}

func (u *gamesUsecase) find(ctx context.Context, id string) (*entity.Game, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.New(apperr.KindNotFound, "Game not found")
	}
	game, err := u.games.FindByID(ctx, id)
	if errors.Is(err, ErrGameNotFound) {
		return nil, apperr.Wrap(apperr.KindNotFound, "Game not found", err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to load game", err)
	}
	return game, nil
}

func (u *gamesUsecase) attachImageURL(g *entity.Game) {
	if g.Path != "" {
		g.ImageURL = u.storage.PublicURL(g.Path)
	}
}
