package db

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
)

// TestBuildDSN_KeyValue は個別フィールドからkey/value形式のDSNが生成されることを検証します。
func TestBuildDSN_KeyValue(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Host:     "db.xyz.supabase.co",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "postgres",
		SSLMode:  "require",
	}

	dsn := BuildDSN(cfg)

	expected := "host=db.xyz.supabase.co port=5432 user=postgres password=secret dbname=postgres sslmode=require"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_URLTakesPrecedence はURLが設定されている場合にURLがそのまま使われることを検証します。
func TestBuildDSN_URLTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfg := Config{
		URL:  "postgres://postgres:pw@aws-0-eu-central-1.pooler.supabase.com:6543/postgres",
		Host: "ignored",
		Port: 1,
	}

	if dsn := BuildDSN(cfg); dsn != cfg.URL {
		t.Errorf("expected URL to be used, got %q", dsn)
	}
}

// TestOpenDB_InvalidDSN は不正なDSNの場合にリトライせず即座にエラーが返されることを検証します。
func TestOpenDB_InvalidDSN(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := OpenDB(Config{URL: "postgres://user:pw@host:notaport/db"})

	if err == nil {
		t.Fatal("expected error for malformed DSN, got nil")
	}
	if !strings.Contains(err.Error(), "invalid database DSN") {
		t.Errorf("unexpected error: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("expected OpenDB to fail without retrying")
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, time.Millisecond, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, 10*time.Millisecond, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 50*time.Millisecond, 10*time.Millisecond, opener)

	if err == nil {
		t.Fatal("expected error after timeout, got nil")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if attempts < 2 {
		t.Errorf("expected several attempts, got %d", attempts)
	}
}
