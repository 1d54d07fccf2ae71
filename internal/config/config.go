// Package config loads the service configuration from defaults, an optional TOML
// file, a .env file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Supabase SupabaseConfig `toml:"supabase"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Upload   UploadConfig   `toml:"upload"`
}

type AppConfig struct {
	Name     string `toml:"name"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	GinMode  string `toml:"gin_mode"`
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`
}

type SupabaseConfig struct {
	URL                string `toml:"url"`
	ServiceRoleKey     string `toml:"service_role_key"`
	Bucket             string `toml:"bucket"`
	UsersTable         string `toml:"users_table"`
	GamesTable         string `toml:"games_table"`
	SessionsTable      string `toml:"sessions_table"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
}

// StoreConfig selects where users, games and sessions are persisted.
// Images always go to Supabase Storage.
type StoreConfig struct {
	Backend string `toml:"backend"`
}

// DatabaseConfig is used by the postgres backend (the project's database
// reached directly instead of through PostgREST).
type DatabaseConfig struct {
	URL           string `toml:"url"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	Name          string `toml:"name"`
	SSLMode       string `toml:"sslmode"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// Load reads the configuration and fails fast when required settings are missing.
func Load() (*Config, error) {
	envFile := getEnv("DOTENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		slog.Info(".env not found; using system environment variables", "file", envFile)
	}

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL environment variable is required"))
	}
	if c.Supabase.ServiceRoleKey == "" {
		errs = append(errs, errors.New("SUPABASE_SERVICE_ROLE_KEY environment variable is required"))
	}
	if c.Supabase.Bucket == "" {
		errs = append(errs, errors.New("SUPABASE_BUCKET must not be empty"))
	}
	switch c.Store.Backend {
	case BackendSupabase:
	case BackendPostgres:
		if c.Database.URL == "" && c.Database.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", c.Store.Backend, BackendSupabase, BackendPostgres))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT %d out of range", c.App.Port))
	}
	if c.Auth.JWTExpireMinute <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRE_MINUTE must be positive"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// HTTPAddr returns the listen address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// HTTPTimeout returns the outbound request timeout; zero means none.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Supabase.HTTPTimeoutSeconds) * time.Second
}

// SessionTTL returns the lifetime of issued session tokens.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.JWTExpireMinute) * time.Minute
}

// LogLevel parses App.LogLevel, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:     "Geotagger API",
			Host:     "0.0.0.0",
			Port:     8000,
			GinMode:  "release",
			LogLevel: "info",
		},
		Supabase: SupabaseConfig{
			Bucket:             "images",
			UsersTable:         "users",
			GamesTable:         "games",
			SessionsTable:      "sessions",
			HTTPTimeoutSeconds: 30,
		},
		Store: StoreConfig{
			Backend: BackendSupabase,
		},
		Database: DatabaseConfig{
			Port:    5432,
			User:    "postgres",
			Name:    "postgres",
			SSLMode: "require",
		},
		Auth: AuthConfig{
			JWTExpireMinute: 7 * 24 * 60,
		},
		Upload: UploadConfig{
			MaxBytes: 10 * 1024 * 1024,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.Debug = getEnvAsBool("APP_DEBUG", cfg.App.Debug)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	cfg.Supabase.URL = getEnv("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.ServiceRoleKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", cfg.Supabase.ServiceRoleKey)
	cfg.Supabase.Bucket = getEnv("SUPABASE_BUCKET", cfg.Supabase.Bucket)
	cfg.Supabase.UsersTable = getEnv("USERS_TABLE", cfg.Supabase.UsersTable)
	cfg.Supabase.GamesTable = getEnv("GAMES_TABLE", cfg.Supabase.GamesTable)
	cfg.Supabase.SessionsTable = getEnv("SESSIONS_TABLE", cfg.Supabase.SessionsTable)
	cfg.Supabase.HTTPTimeoutSeconds = getEnvAsInt("HTTP_TIMEOUT_SECONDS", cfg.Supabase.HTTPTimeoutSeconds)

	cfg.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", cfg.Store.Backend))

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.RunMigrations = getEnvAsBool("RUN_MIGRATIONS", cfg.Database.RunMigrations)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.Upload.MaxBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", cfg.Upload.MaxBytes)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
