package jwtmw

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"geotagger/internal/feature/auth/domain/entity"
)

func testClaims(expiresIn time.Duration) entity.TokenClaims {
	now := time.Now().Truncate(time.Second)
	return entity.TokenClaims{
		UserID:    "42",
		SessionID: "5f0c7a9e-1111-4222-8333-444455556666",
		Email:     "user@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(expiresIn),
	}
}

// TestManager_GenerateToken は生成されたJWTトークンが有効で正しいクレームを含むことを検証します。
func TestManager_GenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		email  string
	}{
		{"numeric id", "1", "user@example.com"},
		{"uuid id", "0b7e7f3a-2c7d-4a51-9d2c-0c7cbe3c3b8e", "user+tag@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewManager("test-secret")
			in := testClaims(time.Hour)
			in.UserID = tt.userID
			in.Email = tt.email

			tokenStr, err := m.GenerateToken(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			})
			if err != nil || !token.Valid {
				t.Fatalf("failed to parse token: %v", err)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				t.Fatal("expected MapClaims")
			}
			if claims["sub"] != tt.userID {
				t.Errorf("expected sub %q, got %v", tt.userID, claims["sub"])
			}
			if claims["sid"] != in.SessionID {
				t.Errorf("expected sid %q, got %v", in.SessionID, claims["sid"])
			}
			if claims["email"] != tt.email {
				t.Errorf("expected email %q, got %v", tt.email, claims["email"])
			}
			if exp, ok := claims["exp"].(float64); !ok || int64(exp) != in.ExpiresAt.Unix() {
				t.Errorf("expected exp %d, got %v", in.ExpiresAt.Unix(), claims["exp"])
			}
			if iat, ok := claims["iat"].(float64); !ok || int64(iat) != in.IssuedAt.Unix() {
				t.Errorf("expected iat %d, got %v", in.IssuedAt.Unix(), claims["iat"])
			}
		})
	}
}

// TestManager_ParseToken_RoundTrip は生成したトークンを解析して同じクレームが得られることを検証します。
func TestManager_ParseToken_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret")
	in := testClaims(time.Hour)

	tokenStr, err := m.GenerateToken(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := m.ParseToken(tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.UserID != in.UserID || out.SessionID != in.SessionID || out.Email != in.Email {
		t.Errorf("claims mismatch: got %+v, want %+v", out, in)
	}
	if !out.ExpiresAt.Equal(in.ExpiresAt) || !out.IssuedAt.Equal(in.IssuedAt) {
		t.Errorf("time claims mismatch: got %+v, want %+v", out, in)
	}
}

// TestManager_ParseToken_Invalid は不正なトークン（改ざん・期限切れ等）でErrInvalidTokenが返されることを検証します。
func TestManager_ParseToken_Invalid(t *testing.T) {
	t.Parallel()

	m := NewManager("test-secret")

	expired, _ := m.GenerateToken(testClaims(-time.Minute))
	otherSecret, _ := NewManager("other-secret").GenerateToken(testClaims(time.Hour))

	noSid := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSidStr, _ := noSid.SignedString([]byte("test-secret"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "sid": "s"})
	noExpStr, _ := noExp.SignedString([]byte("test-secret"))

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "1",
		"sid": "s",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	hs512Str, _ := hs512.SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"missing sid", noSidStr},
		{"missing exp", noExpStr},
		{"other algorithm", hs512Str},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := m.ParseToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRandomSecret(t *testing.T) {
	t.Parallel()

	s1, err := RandomSecret()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s2, _ := RandomSecret()

	if len(s1) < 32 {
		t.Errorf("expected at least 32 characters, got %d", len(s1))
	}
	if s1 == s2 {
		t.Error("expected different secrets")
	}
}
