package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"geotagger/internal/feature/auth/domain/entity"
	"geotagger/internal/shared/apperr"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6
	// maxPasswordBytes はbcryptが扱える最大バイト数です。
	maxPasswordBytes = 72

	// DefaultSessionTTL is used when NewAuthUsecase is given a non-positive TTL.
	DefaultSessionTTL = 7 * 24 * time.Hour
)

// dummyHash is compared against when the user does not exist so that both
// branches of Login spend the same bcrypt time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create inserts user and returns the stored row.
	// Returns ErrEmailAlreadyExists on a duplicate email and ErrNoRowReturned
	// when the store does not echo the row back.
	Create(ctx context.Context, user *entity.User) (*entity.User, error)

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// UpdatePassword replaces the password hash of the user with email.
	UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error

	// Sample returns at most limit users. It backs the connectivity check.
	Sample(ctx context.Context, limit int) ([]*entity.User, error)
}

// TokenManager signs and verifies access tokens.
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenManager interface {
	GenerateToken(claims entity.TokenClaims) (string, error)
	ParseToken(token string) (entity.TokenClaims, error)
}

// ClientInfo describes the client a session is created for.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User        *entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	tokens     TokenManager
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenManager, sessionTTL time.Duration) *authUsecase {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.New(apperr.KindInvalidInput, "password is required")
	}
	if len(password) < minPasswordLength {
		return apperr.Newf(apperr.KindInvalidInput, "password must be at least %d characters long", minPasswordLength)
	}
	// bcrypt rejects longer input instead of truncating it.
	if len(password) > maxPasswordBytes {
		return apperr.Newf(apperr.KindInvalidInput, "password must be at most %d bytes long", maxPasswordBytes)
	}
	return nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	now := u.now()
	created, err := u.users.Create(ctx, &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	switch {
	case errors.Is(err, ErrEmailAlreadyExists):
		return nil, apperr.Wrap(apperr.KindConflict, "User with this email already exists", err)
	case errors.Is(err, ErrNoRowReturned):
		return nil, apperr.Wrap(apperr.KindInternal, "User not inserted", err)
	case err != nil:
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}
	return created, nil
}

// Login はユーザーを認証し、成功時にセッションとJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	passwordHash := dummyHash
	if user != nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if user == nil {
		return nil, apperr.Wrap(apperr.KindNotFound, "User not found", ErrUserNotFound)
	}
	if compareErr != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid password", compareErr)
	}

	now := u.now()
	session := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.sessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create session", err)
	}

	token, err := u.tokens.GenerateToken(entity.TokenClaims{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate token", err)
	}

	return &LoginResult{User: user, AccessToken: token, ExpiresAt: session.ExpiresAt}, nil
}

// ResetPassword replaces the password of the user with email and revokes the
// user's sessions.
func (u *authUsecase) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.New(apperr.KindInvalidInput, "email is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "User not found", err)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}
	if err := u.users.UpdatePassword(ctx, user.Email, string(hashed), u.now()); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update password", err)
	}

	if err := u.sessions.RevokeAllByUserID(ctx, user.ID); err != nil {
		slog.Warn("failed to revoke sessions after password reset", "error", err, "user_id", user.ID)
	}
	return nil
}

// Logout revokes the session with sessionID.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	err := u.sessions.Revoke(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "Session not found", err)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to revoke session", err)
	}
	return nil
}

// Authenticate verifies token and checks that its session is still valid.
func (u *authUsecase) Authenticate(ctx context.Context, token string) (entity.TokenClaims, error) {
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return entity.TokenClaims{}, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}

	session, err := u.sessions.FindByID(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return entity.TokenClaims{}, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	if err != nil {
		return entity.TokenClaims{}, apperr.Wrap(apperr.KindInternal, "failed to load session", err)
	}

	if !session.IsValid() {
		cause := ErrSessionExpired
		if session.IsRevoked() {
			cause = ErrSessionRevoked
		}
		return entity.TokenClaims{}, apperr.Wrap(apperr.KindUnauthorized, "invalid token", cause)
	}
	if session.UserID != claims.UserID {
		return entity.TokenClaims{}, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	return claims, nil
}

// CheckStore reads at most one user to check that the credential store answers.
func (u *authUsecase) CheckStore(ctx context.Context) ([]*entity.User, error) {
	users, err := u.users.Sample(ctx, 1)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "credential store unavailable", err)
	}
	return users, nil
}
