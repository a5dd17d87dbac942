package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Token    TokenConfig
	Media    MediaConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr     string
	LogLevel string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SessionConfig controls the session cookie issued to browser clients.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// TokenConfig controls API token issuance.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// MediaConfig locates the image store on disk and its public URL prefix.
type MediaConfig struct {
	Root    string
	BaseURL string
}

// Load inspects the environment and builds a Config value. A .env file in the
// working directory seeds the environment first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		LogLevel: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 2),
		MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: durationFromEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: durationFromEnv("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
	}

	cfg.Session = SessionConfig{
		Lifetime:     durationFromEnv("SESSION_LIFETIME", 12*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "forkful_session"),
		CookieDomain: os.Getenv("SESSION_COOKIE_DOMAIN"),
		CookieSecure: boolFromEnv("SESSION_COOKIE_SECURE", false),
	}

	cfg.Token = TokenConfig{
		Secret: os.Getenv("TOKEN_SECRET"),
		TTL:    durationFromEnv("TOKEN_TTL", 24*time.Hour),
	}

	cfg.Media = MediaConfig{
		Root:    firstNonEmpty(os.Getenv("MEDIA_ROOT"), "media"),
		BaseURL: firstNonEmpty(os.Getenv("MEDIA_BASE_URL"), "/media"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func boolFromEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
