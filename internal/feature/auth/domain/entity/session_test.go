package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsValid(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name        string
		session     Session
		wantExpired bool
		wantRevoked bool
		wantValid   bool
	}{
		{"active", Session{ExpiresAt: time.Now().Add(time.Hour)}, false, false, true},
		{"expired", Session{ExpiresAt: past}, true, false, false},
		{"revoked", Session{ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &past}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantExpired, tt.session.IsExpired())
			assert.Equal(t, tt.wantRevoked, tt.session.IsRevoked())
			assert.Equal(t, tt.wantValid, tt.session.IsValid())
		})
	}
}
