package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDR", "ADDR", "DATABASE_URL", "DB_URL", "LOG_LEVEL",
		"SESSION_LIFETIME", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE",
		"TOKEN_SECRET", "TOKEN_TTL", "MEDIA_ROOT", "MEDIA_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Server.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Server.LogLevel)
	}
	if cfg.Session.CookieName != "forkful_session" {
		t.Fatalf("expected default cookie name, got %q", cfg.Session.CookieName)
	}
	if cfg.Session.Lifetime != 12*time.Hour {
		t.Fatalf("expected default session lifetime, got %s", cfg.Session.Lifetime)
	}
	if cfg.Token.TTL != 24*time.Hour {
		t.Fatalf("expected default token ttl, got %s", cfg.Token.TTL)
	}
	if cfg.Media.Root != "media" || cfg.Media.BaseURL != "/media" {
		t.Fatalf("unexpected media defaults: %+v", cfg.Media)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/forkful")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SESSION_LIFETIME", "1h")
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("expected addr override, got %q", cfg.Server.Addr)
	}
	if cfg.Database.URL != "postgres://localhost/forkful" {
		t.Fatalf("expected database url override, got %q", cfg.Database.URL)
	}
	if !cfg.Session.CookieSecure {
		t.Fatal("expected secure cookie override")
	}
	if cfg.Session.Lifetime != time.Hour {
		t.Fatalf("expected 1h session lifetime, got %s", cfg.Session.Lifetime)
	}
	if cfg.Token.Secret != "s3cret" {
		t.Fatalf("expected token secret override, got %q", cfg.Token.Secret)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("expected 25 max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestEnvParsersFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("SESSION_COOKIE_SECURE", "not-a-bool")
	t.Setenv("SESSION_LIFETIME", "not-a-duration")

	if got := intFromEnv("DB_MAX_OPEN_CONNS", 10); got != 10 {
		t.Fatalf("intFromEnv fallback = %d, want 10", got)
	}
	if got := boolFromEnv("SESSION_COOKIE_SECURE", true); got != true {
		t.Fatal("boolFromEnv fallback = false, want true")
	}
	if got := durationFromEnv("SESSION_LIFETIME", time.Minute); got != time.Minute {
		t.Fatalf("durationFromEnv fallback = %s, want 1m", got)
	}
}
