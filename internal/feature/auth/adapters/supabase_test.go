package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotagger/internal/feature/auth/usecase"
	"geotagger/internal/platform/supabase"
)

func newSupabaseClient(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return supabase.NewClient(supabase.Config{URL: server.URL, ServiceRoleKey: "key", Bucket: "images"}, server.Client())
}

func TestUserSupabase_Create(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/users", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@example.com", body["email"])
		assert.Equal(t, "hash", body["password_hash"])
		assert.Equal(t, true, body["is_active"])
		assert.NotContains(t, body, "id")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":12,"email":"new@example.com","password_hash":"hash","is_active":true,"created_at":"2025-01-15T10:00:00","updated_at":"2025-01-15T10:00:00"}]`))
	})
	repo := NewUserSupabase(client, "users")

	created, err := repo.Create(context.Background(), newTestUser("new@example.com"))

	require.NoError(t, err)
	assert.Equal(t, "12", created.ID)
	assert.True(t, created.IsActive)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), created.CreatedAt)
}

func TestUserSupabase_Create_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"duplicate email", http.StatusConflict, `{"code":"23505","message":"duplicate key value violates unique constraint"}`, usecase.ErrEmailAlreadyExists},
		{"no row returned", http.StatusCreated, `[]`, usecase.ErrNoRowReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewUserSupabase(client, "users").Create(context.Background(), newTestUser("a@example.com"))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserSupabase_FindByEmail(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("email") {
		case "eq.a@example.com":
			_, _ = w.Write([]byte(`[{"id":"u-1","email":"a@example.com","password_hash":"h","is_active":null,"created_at":"2025-01-15T10:00:00Z","updated_at":"2025-01-15T10:00:00Z"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	repo := NewUserSupabase(client, "users")

	u, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "h", u.PasswordHash)
	assert.True(t, u.IsActive, "missing is_active defaults to true")

	_, err = repo.FindByEmail(context.Background(), "b@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserSupabase_FindByID_StoreError(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewUserSupabase(client, "users").FindByID(context.Background(), "1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserSupabase_UpdatePassword(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new-hash", body["password_hash"])
		assert.Equal(t, "2025-02-01T00:00:00Z", body["updated_at"])

		if r.URL.Query().Get("email") == "eq.a@example.com" {
			_, _ = w.Write([]byte(`[{"id":1,"email":"a@example.com"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	repo := NewUserSupabase(client, "users")
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, repo.UpdatePassword(context.Background(), "a@example.com", "new-hash", at))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "b@example.com", "new-hash", at), usecase.ErrUserNotFound)
}

func TestUserSupabase_Sample(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":1,"email":"a@example.com"}]`))
	})

	users, err := NewUserSupabase(client, "users").Sample(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@example.com", users[0].Email)
}

func TestSessionSupabase(t *testing.T) {
	t.Parallel()

	client := newSupabaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/sessions", r.URL.Path)
		q := r.URL.Query()

		switch {
		case r.Method == http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "s1", body["id"])
			assert.Equal(t, "u1", body["user_id"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodGet && q.Get("id") == "eq.s1":
			_, _ = w.Write([]byte(`[{"id":"s1","user_id":"u1","user_agent":"ua","ip_address":"1.2.3.4","created_at":"2025-01-01T00:00:00Z","expires_at":"2999-01-01T00:00:00Z","revoked_at":null}]`))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPatch && q.Get("user_id") == "eq.u1":
			assert.Equal(t, "is.null", q.Get("revoked_at"))
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPatch && q.Get("id") == "eq.s1":
			_, _ = w.Write([]byte(`[{"id":"s1","user_id":"u1","created_at":"2025-01-01T00:00:00Z","expires_at":"2999-01-01T00:00:00Z","revoked_at":"2025-01-02T00:00:00Z"}]`))
		case r.Method == http.MethodPatch:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	repo := NewSessionSupabase(client, "sessions")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestSession("s1", "u1", time.Hour)))

	s, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "1.2.3.4", s.IPAddress)
	assert.True(t, s.IsValid())

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrSessionNotFound)

	assert.NoError(t, repo.Revoke(ctx, "s1"))
	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), usecase.ErrSessionNotFound)
	assert.NoError(t, repo.RevokeAllByUserID(ctx, "u1"))
}
