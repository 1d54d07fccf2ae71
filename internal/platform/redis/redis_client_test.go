package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pingErr error
		wantErr bool
	}{
		{"pong", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rdb, mock := redismock.NewClientMock()
			if tt.pingErr != nil {
				mock.ExpectPing().SetErr(tt.pingErr)
			} else {
				mock.ExpectPing().SetVal("PONG")
			}

			err := checkConnection(context.Background(), rdb, "redis:6379")

			if tt.wantErr {
				assert.ErrorIs(t, err, tt.pingErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewRedisClient(context.Background(), Config{Addr: mr.Addr()})

	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), Config{Addr: addr})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
