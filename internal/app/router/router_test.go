package router

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authentity "geotagger/internal/feature/auth/domain/entity"
	authhandler "geotagger/internal/feature/auth/transport/handler"
	authusecase "geotagger/internal/feature/auth/usecase"
	"geotagger/internal/feature/games/domain/entity"
	gameshandler "geotagger/internal/feature/games/transport/handler"
	gamesusecase "geotagger/internal/feature/games/usecase"
	platformhandler "geotagger/internal/platform/http/handler"
	"geotagger/internal/platform/http/response"
	jwtmw "geotagger/internal/platform/jwt"
	"geotagger/internal/shared/apperr"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubAuth struct {
	loggedOut string
}

func (s *stubAuth) Register(ctx context.Context, email, password string) (*authentity.User, error) {
	return &authentity.User{ID: "1", Email: email}, nil
}

func (s *stubAuth) Login(ctx context.Context, email, password string, client authusecase.ClientInfo) (*authusecase.LoginResult, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) ResetPassword(ctx context.Context, email, newPassword string) error { return nil }

func (s *stubAuth) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return nil
}

func (s *stubAuth) CheckStore(ctx context.Context) ([]*authentity.User, error) { return nil, nil }

type stubGames struct {
	creator string
}

func (s *stubGames) CreateGame(ctx context.Context, in gamesusecase.CreateGameInput) (*entity.Game, error) {
	s.creator = in.UserID
	return &entity.Game{ID: "g1", UserID: in.UserID, Path: "games/x.jpg"}, nil
}

func (s *stubGames) ListGames(ctx context.Context, limit, offset int) ([]*entity.Game, error) {
	return nil, nil
}

func (s *stubGames) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return &entity.Game{ID: id}, nil
}

func (s *stubGames) CheckLocation(ctx context.Context, id string, lat, lon float64) (*entity.LocationCheck, error) {
	return &entity.LocationCheck{}, nil
}

func (s *stubGames) MaxImageBytes() int64 { return 1 << 20 }

var testAuthenticator = jwtmw.AuthenticatorFunc(func(ctx context.Context, token string) (jwtmw.Principal, error) {
	switch token {
	case "valid":
	case "store-down":
		return jwtmw.Principal{}, apperr.Wrap(apperr.KindInternal, "failed to load session", errors.New("redis: connection refused"))
	default:
		return jwtmw.Principal{}, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	return jwtmw.Principal{UserID: "token-user", SessionID: "sid-1"}, nil
})

func setup() (*gin.Engine, *stubAuth, *stubGames) {
	auth := &stubAuth{}
	games := &stubGames{}
	errWriter := response.NewErrorWriter(false)
	r := NewRouter(
		platformhandler.NewHealthHandler("Geotagger API"),
		authhandler.NewAuthHandler(auth, errWriter),
		gameshandler.NewGamesHandler(games, errWriter),
		testAuthenticator,
		errWriter,
	)
	return r, auth, games
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _, _ := setup()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Welcome to Geotagger API"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	r, _, _ := setup()

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_GamesListWithAndWithoutSlash(t *testing.T) {
	r, _, _ := setup()

	for _, path := range []string{"/games", "/games/"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String(), path)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/games/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Logout(t *testing.T) {
	r, auth, _ := setup()

	w := serve(r, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sid-1", auth.loggedOut)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer store-down")
	w = serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func uploadRequest(t *testing.T, userID, authorization string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "a.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.WriteField("latitude", "46.05"))
	require.NoError(t, mw.WriteField("longitude", "14.5"))
	require.NoError(t, mw.WriteField("user_id", userID))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/games/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func TestRouter_CreateGameActingUser(t *testing.T) {
	t.Run("form user without token", func(t *testing.T) {
		r, _, games := setup()
		w := serve(r, uploadRequest(t, "form-user", ""))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "form-user", games.creator)
	})

	t.Run("token subject wins", func(t *testing.T) {
		r, _, games := setup()
		w := serve(r, uploadRequest(t, "form-user", "Bearer valid"))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "token-user", games.creator)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		r, _, games := setup()
		w := serve(r, uploadRequest(t, "form-user", "Bearer forged"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, games.creator)
	})
}
