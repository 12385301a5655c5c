package database

import (
	"context"
	"testing"
	"time"
)

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Expected port 5432, got %d", cfg.Port)
	}
	if cfg.MaxConns != 25 {
		t.Errorf("Expected max conns 25, got %d", cfg.MaxConns)
	}
	if cfg.MinConns != 5 {
		t.Errorf("Expected min conns 5, got %d", cfg.MinConns)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected max retries 3, got %d", cfg.MaxRetries)
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"

	if dsn != expected {
		t.Errorf("DSN mismatch:\nExpected: %s\nGot: %s", expected, dsn)
	}
}

func TestNewPostgres_InvalidHost(t *testing.T) {
	cfg := &PostgresConfig{
		Host:           "invalid-host-that-does-not-exist",
		Port:           9999,
		User:           "invalid",
		Password:       "invalid",
		Database:       "invalid",
		SSLMode:        "disable",
		MaxRetries:     1,
		RetryInterval:  100 * time.Millisecond,
		ConnectTimeout: 1 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewPostgres(ctx, cfg)
	if err == nil {
		t.Error("Expected error for invalid config, got nil")
	}
}
