// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/feature/auth/transport/http/dto"
	"geotagger/internal/feature/auth/usecase"
	"geotagger/internal/platform/http/response"
	jwtmw "geotagger/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string, client usecase.ClientInfo) (*usecase.LoginResult, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	Logout(ctx context.Context, sessionID string) error
	CheckStore(ctx context.Context) ([]*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth   AuthUsecase
	errors *response.ErrorWriter
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, errWriter *response.ErrorWriter) *AuthHandler {
	return &AuthHandler{auth: auth, errors: errWriter}
}

// TestDB reports whether the credential store answers.
func (h *AuthHandler) TestDB(c *gin.Context) {
	users, err := h.auth.CheckStore(c.Request.Context())
	if err != nil {
		h.errors.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StoreCheckRes{Success: true, Data: dto.NewUserResList(users)})
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時は201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BadRequest(c, "email and password are required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.Write(c, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.RegisterRes{Status: dto.StatusSuccess, User: dto.NewUserRes(user)})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 未登録のメールアドレスは404、パスワード不一致は401を返却
// - 成功時はアクセストークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BadRequest(c, "email and password are required")
		return
	}

	client := usecase.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, client)
	if err != nil {
		h.errors.Write(c, err)
		return
	}

	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		Status:      dto.StatusSuccess,
		Message:     "Login successful",
		User:        dto.NewUserRes(res.User),
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt.UTC(),
	})
}

// ResetPassword replaces the password of the user with the given email.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("reset password validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BadRequest(c, "email and new_password are required")
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		h.errors.Write(c, err)
		return
	}

	slog.Info("password reset", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.MessageRes{Status: dto.StatusSuccess, Message: "Password successfully reset"})
}

// Logout revokes the session of the bearer token. It must be mounted behind
// jwtmw.AuthRequired.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Detail: "missing bearer token"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), principal.SessionID); err != nil {
		h.errors.Write(c, err)
		return
	}

	slog.Info("user logged out", "user_id", principal.UserID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.MessageRes{Status: dto.StatusSuccess, Message: "Logged out"})
}
