package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "geotagger/internal/feature/auth/adapters"
	"geotagger/internal/feature/auth/usecase"
	"geotagger/internal/platform/session"
	"geotagger/internal/platform/supabase"
)

// sessionKeyPrefix namespaces session keys in Redis.
const sessionKeyPrefix = "session"

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise it uses the database when one is open, and the PostgREST
// sessions table as the last resort.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB, client *supabase.Client, table string) usecase.SessionRepository {
	switch {
	case rdb != nil:
		return session.NewSessionRedis(rdb, sessionKeyPrefix)
	case db != nil:
		return authadapters.NewSessionGorm(db, table)
	default:
		return authadapters.NewSessionSupabase(client, table)
	}
}
