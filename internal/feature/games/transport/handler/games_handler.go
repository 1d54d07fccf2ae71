// Package handler はgamesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"geotagger/internal/feature/games/domain/entity"
	"geotagger/internal/feature/games/transport/http/dto"
	"geotagger/internal/feature/games/usecase"
	"geotagger/internal/platform/http/response"
	jwtmw "geotagger/internal/platform/jwt"
)

// GamesUsecase はゲーム操作のユースケースを定義します。
type GamesUsecase interface {
	CreateGame(ctx context.Context, in usecase.CreateGameInput) (*entity.Game, error)
	ListGames(ctx context.Context, limit, offset int) ([]*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	CheckLocation(ctx context.Context, id string, lat, lon float64) (*entity.LocationCheck, error)
	MaxImageBytes() int64
}

// GamesHandler はゲーム関連のHTTPリクエストを処理します。
type GamesHandler struct {
	games  GamesUsecase
	errors *response.ErrorWriter
}

// NewGamesHandler はGamesHandlerの新しいインスタンスを生成します。
func NewGamesHandler(games GamesUsecase, errWriter *response.ErrorWriter) *GamesHandler {
	return &GamesHandler{games: games, errors: errWriter}
}

// List はゲーム一覧を作成日時の降順で返します。
// 例: GET /games/?limit=20&offset=40
func (h *GamesHandler) List(c *gin.Context) {
	var q dto.ListGamesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "limit and offset must be integers")
		return
	}

	games, err := h.games.ListGames(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		h.errors.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGameResList(games))
}

// Get は単一のゲームを返します。
func (h *GamesHandler) Get(c *gin.Context) {
	game, err := h.games.GetGame(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		h.errors.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewGameRes(game))
}

// Create は画像付きのゲームを登録します。
// - multipartフィールド: image, latitude, longitude, title, user_id
// - 有効なBearerトークンがあればそのユーザーを作成者とし、なければuser_idを使用
// - 成功時は201を返却
func (h *GamesHandler) Create(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}

	lat, errLat := parseCoordinate(c.PostForm("latitude"))
	lon, errLon := parseCoordinate(c.PostForm("longitude"))
	if errLat != nil || errLon != nil {
		response.BadRequest(c, "latitude and longitude must be numbers")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "could not read image")
		return
	}
	defer f.Close()

	// One byte over the limit is enough for the usecase to reject the upload.
	data, err := io.ReadAll(io.LimitReader(f, h.games.MaxImageBytes()+1))
	if err != nil {
		response.BadRequest(c, "could not read image")
		return
	}

	userID := c.PostForm("user_id")
	if p, ok := jwtmw.PrincipalFrom(c); ok {
		userID = p.UserID
	}

	game, err := h.games.CreateGame(c.Request.Context(), usecase.CreateGameInput{
		Image:       data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Lat:         lat,
		Lon:         lon,
		Title:       c.PostForm("title"),
		UserID:      userID,
	})
	if err != nil {
		h.errors.Write(c, err)
		return
	}

	slog.Info("game created", "game_id", game.ID, "user_id", game.UserID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.CreateGameRes{Status: dto.StatusSuccess, Game: dto.NewGameRes(game)})
}

// Check は推測地点とゲームの撮影地点の距離を返します。
func (h *GamesHandler) Check(c *gin.Context) {
	var req dto.CheckLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "latitude and longitude are required")
		return
	}

	res, err := h.games.CheckLocation(c.Request.Context(), c.Param("game_id"), *req.Latitude, *req.Longitude)
	if err != nil {
		h.errors.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCheckLocationRes(res))
}

func parseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
