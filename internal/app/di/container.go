package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"geotagger/internal/config"
	authadapters "geotagger/internal/feature/auth/adapters"
	"geotagger/internal/feature/auth/domain/entity"
	authhandler "geotagger/internal/feature/auth/transport/handler"
	authusecase "geotagger/internal/feature/auth/usecase"
	gamesadapters "geotagger/internal/feature/games/adapters"
	gameshandler "geotagger/internal/feature/games/transport/handler"
	gamesusecase "geotagger/internal/feature/games/usecase"
	"geotagger/internal/platform/db"
	platformhandler "geotagger/internal/platform/http/handler"
	"geotagger/internal/platform/http/response"
	jwtmw "geotagger/internal/platform/jwt"
	platformredis "geotagger/internal/platform/redis"
	"geotagger/internal/platform/supabase"
)

// Container holds the handlers served by the router and the resources that
// must be released on shutdown.
type Container struct {
	Health        *platformhandler.HealthHandler
	Auth          *authhandler.AuthHandler
	Games         *gameshandler.GamesHandler
	Authenticator jwtmw.Authenticator
	Errors        *response.ErrorWriter

	closers []func() error
}

// Close releases the database pool and the Redis client.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// stores groups the repositories of the selected backend.
type stores struct {
	users    authusecase.UserRepository
	sessions authusecase.SessionRepository
	games    gamesusecase.GameRepository
}

// NewContainer wires every component from cfg.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{}
	client := NewSupabaseClient(cfg)

	var gdb *gorm.DB
	if cfg.Store.Backend == config.BackendPostgres {
		var err error
		gdb, err = openDatabase(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		c.closers = append(c.closers, sqlDB.Close)
	}

	rdb := openRedis(ctx, cfg)
	if rdb != nil {
		c.closers = append(c.closers, rdb.Close)
	}

	st := newStores(cfg, client, gdb, rdb)

	tokens := jwtmw.NewManager(cfg.Auth.JWTSecret)
	authUC := authusecase.NewAuthUsecase(st.users, st.sessions, tokens, cfg.SessionTTL())

	storage := gamesadapters.NewStorageSupabase(client, client.Bucket())
	creators := gamesadapters.NewCreatorLookup(st.users)
	gamesUC := gamesusecase.NewGamesUsecase(st.games, storage, creators, cfg.Upload.MaxBytes)

	errWriter := response.NewErrorWriter(cfg.App.Debug)
	c.Health = platformhandler.NewHealthHandler(cfg.App.Name)
	c.Auth = authhandler.NewAuthHandler(authUC, errWriter)
	c.Games = gameshandler.NewGamesHandler(gamesUC, errWriter)
	c.Authenticator = NewAuthenticator(authUC)
	c.Errors = errWriter

	slog.Info("components wired",
		"store_backend", cfg.Store.Backend,
		"sessions", sessionBackend(rdb, gdb),
		"bucket", client.Bucket(),
	)
	return c, nil
}

func newStores(cfg *config.Config, client *supabase.Client, gdb *gorm.DB, rdb *redis.Client) stores {
	if gdb != nil {
		return stores{
			users:    authadapters.NewUserGorm(gdb, cfg.Supabase.UsersTable),
			sessions: NewSessionRepository(rdb, gdb, client, cfg.Supabase.SessionsTable),
			games:    gamesadapters.NewGameGorm(gdb, cfg.Supabase.GamesTable),
		}
	}
	return stores{
		users:    authadapters.NewUserSupabase(client, cfg.Supabase.UsersTable),
		sessions: NewSessionRepository(rdb, nil, client, cfg.Supabase.SessionsTable),
		games:    gamesadapters.NewGameSupabase(client, cfg.Supabase.GamesTable),
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.OpenDB(db.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.RunMigrations {
		if err := migrateOrClose(gdb, cfg); err != nil {
			return nil, err
		}
	}
	return gdb, nil
}

// migrateOrClose creates the tables. The pool is closed when migration fails.
func migrateOrClose(gdb *gorm.DB, cfg *config.Config) error {
	err := migrate(gdb, cfg)
	if err == nil {
		slog.Info("database migrated")
		return nil
	}
	if sqlDB, dbErr := gdb.DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			slog.Error("failed to close database after migration error", "error", closeErr)
		}
	}
	return err
}

func migrate(gdb *gorm.DB, cfg *config.Config) error {
	if err := authadapters.Migrate(gdb, cfg.Supabase.UsersTable, cfg.Supabase.SessionsTable); err != nil {
		return fmt.Errorf("migrate auth tables: %w", err)
	}
	if err := gamesadapters.Migrate(gdb, cfg.Supabase.GamesTable); err != nil {
		return fmt.Errorf("migrate games table: %w", err)
	}
	return nil
}

// openRedis returns nil when Redis is not configured or not reachable.
func openRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb, err := platformredis.NewRedisClient(ctx, platformredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Warn("Redis unavailable; falling back to the store for sessions", "addr", cfg.Redis.Addr, "error", err)
		return nil
	}
	return rdb
}

func sessionBackend(rdb *redis.Client, gdb *gorm.DB) string {
	switch {
	case rdb != nil:
		return "redis"
	case gdb != nil:
		return "postgres"
	default:
		return "supabase"
	}
}

// TokenAuthenticator verifies access tokens against their sessions.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (entity.TokenClaims, error)
}

// NewAuthenticator adapts the auth usecase to the bearer token middleware.
func NewAuthenticator(auth TokenAuthenticator) jwtmw.Authenticator {
	return jwtmw.AuthenticatorFunc(func(ctx context.Context, token string) (jwtmw.Principal, error) {
		claims, err := auth.Authenticate(ctx, token)
		if err != nil {
			return jwtmw.Principal{}, err
		}
		return jwtmw.Principal{UserID: claims.UserID, SessionID: claims.SessionID, Email: claims.Email}, nil
	})
}
