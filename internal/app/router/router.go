// Package router builds the gin engine and registers every route.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "geotagger/internal/feature/auth/transport/handler"
	gameshandler "geotagger/internal/feature/games/transport/handler"
	platformhandler "geotagger/internal/platform/http/handler"
	"geotagger/internal/platform/http/middleware"
	"geotagger/internal/platform/http/response"
	jwtmw "geotagger/internal/platform/jwt"
)

// NewRouter registers the routes on a new engine.
func NewRouter(health *platformhandler.HealthHandler, authHandler *authhandler.AuthHandler,
	games *gameshandler.GamesHandler, authn jwtmw.Authenticator, errWriter *response.ErrorWriter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// ブラウザのフロントエンドから呼ばれるため全オリジンを許可
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"*"},
	}))

	// 導通確認用
	r.GET("/", health.Root)
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	auth := r.Group("/auth")
	{
		auth.GET("/test-db", authHandler.TestDB)
		// 新規ユーザー登録
		auth.POST("/register", authHandler.Register)
		// ログイン（JWT 発行）
		auth.POST("/login", authHandler.Login)
		auth.POST("/reset-password", authHandler.ResetPassword)
		// トークンのセッションを失効させる
		auth.POST("/logout", jwtmw.AuthRequired(authn, errWriter), authHandler.Logout)
	}

	// 末尾スラッシュの有無どちらでも受け付ける
	for _, base := range []string{"/games", "/games/"} {
		r.GET(base, games.List)
		r.POST(base, jwtmw.AuthOptional(authn, errWriter), games.Create)
	}
	r.GET("/games/:game_id", games.Get)
	r.POST("/games/:game_id/check", games.Check)

	return r
}
