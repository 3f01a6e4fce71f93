package config

import (
	"testing"
	"time"
)

// TestLoad_Defaults は環境変数未設定時にデフォルト値が適用されることを検証する。
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.StoreBaseURL != "http://localhost:4000" {
		t.Errorf("StoreBaseURL = %q, want http://localhost:4000", cfg.StoreBaseURL)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %v, want 10s", cfg.StoreTimeout)
	}
	if cfg.StorePort != "4000" {
		t.Errorf("StorePort = %q, want 4000", cfg.StorePort)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want 86400", cfg.SessionMaxAge)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitScrumCreate != 10 {
		t.Errorf("RateLimitScrumCreate = %d, want 10", cfg.RateLimitScrumCreate)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want http://localhost:3000", cfg.CORSAllowedOrigin)
	}
}

// TestLoad_Overrides は環境変数が設定されている場合に上書きされることを検証する。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://agiletrack:pw@db:5432/agiletrack")
	t.Setenv("STORE_BASE_URL", "http://store:4000")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("RATE_LIMIT_SCRUM_CREATE", "5")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://agiletrack:pw@db:5432/agiletrack" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.StoreBaseURL != "http://store:4000" {
		t.Errorf("StoreBaseURL = %q, want http://store:4000", cfg.StoreBaseURL)
	}
	if cfg.StoreTimeout != 3*time.Second {
		t.Errorf("StoreTimeout = %v, want 3s", cfg.StoreTimeout)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("SessionMaxAge = %d, want 3600", cfg.SessionMaxAge)
	}
	if cfg.RateLimitScrumCreate != 5 {
		t.Errorf("RateLimitScrumCreate = %d, want 5", cfg.RateLimitScrumCreate)
	}
	if cfg.CORSAllowedOrigin != "https://app.example.com" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
}

// TestLoad_CookieSecure はBaseURLのスキームからCookieSecureが導出されることを検証する。
func TestLoad_CookieSecure(t *testing.T) {
	t.Setenv("BASE_URL", "https://agiletrack.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true for https BASE_URL")
	}

	t.Setenv("BASE_URL", "http://localhost:8080")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false for http BASE_URL")
	}
}

// TestLoad_InvalidNumbersFallBack は不正な数値がデフォルトへフォールバックすることを検証する。
func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want default 86400", cfg.SessionMaxAge)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %v, want default 10s", cfg.StoreTimeout)
	}
}

// TestRequireDatabaseURL はDATABASE_URL未設定時にエラーが返ることを検証する。
func TestRequireDatabaseURL(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireDatabaseURL(); err == nil {
		t.Error("expected error when DATABASE_URL is empty")
	}

	cfg.DatabaseURL = "postgres://agiletrack:pw@localhost:5432/agiletrack"
	if err := cfg.RequireDatabaseURL(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
