package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tagmaker/internal/models"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (optional, shares rate limit and session state between replicas)
	RedisURL string

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string

	// OIDC (admin login)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	AdminEmails      []string // empty = any authenticated user is an admin

	// APIToken authorizes CMS hook calls and scripted admin calls
	// via "Authorization: Bearer <token>".
	APIToken string

	// Session
	SessionSecret string // Used for encrypting cookies (min 32 chars)

	// CORS
	CORSOrigins string

	// RulesFile is the optional YAML file with filter rules and settings.
	RulesFile string

	// Tagging behavior
	Settings Settings

	// Background backfill of published articles that were never processed
	EnableBackfill   bool
	BackfillInterval time.Duration
}

// Settings controls how keywords are turned into tags.
type Settings struct {
	TagMode                  string // append or replace
	AutoProcessOnSave        bool
	MinimumKeywordsForFullKW int
	ProcessFeaturedImageOnly bool
	DebugLogging             bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:              getEnv("ENV", "development"),
		ServerAddr:       getEnv("SERVER_ADDR", ":3000"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/tagmaker?sslmode=disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		TLSEnabled:       getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:      getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:       getEnv("TLS_KEY_FILE", ""),
		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		AdminEmails:      splitList(getEnv("ADMIN_EMAILS", "")),
		APIToken:         getEnv("API_TOKEN", ""),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),
		RulesFile:        getEnv("RULES_FILE", "rules.yaml"),

		Settings: Settings{
			TagMode:                  tagModeFromEnv(),
			AutoProcessOnSave:        getBool("AUTO_PROCESS_ON_SAVE", true),
			MinimumKeywordsForFullKW: getInt("MIN_KEYWORDS_FOR_FULLKW", 5),
			ProcessFeaturedImageOnly: getBool("PROCESS_FEATURED_IMAGE_ONLY", false),
			DebugLogging:             getBool("DEBUG_LOGGING", false),
		},

		EnableBackfill:   getBool("ENABLE_BACKFILL", false),
		BackfillInterval: getDuration("BACKFILL_INTERVAL", 15*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return d
}

// tagModeFromEnv reads TAG_MODE, honoring the older REMOVE_EXISTING_TAGS
// switch which always means replace.
func tagModeFromEnv() string {
	if getBool("REMOVE_EXISTING_TAGS", false) {
		return models.TagModeReplace
	}
	return NormalizeTagMode(getEnv("TAG_MODE", models.TagModeAppend))
}

// NormalizeTagMode returns mode if it is a known tag mode and append otherwise.
func NormalizeTagMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case models.TagModeReplace:
		return models.TagModeReplace
	default:
		return models.TagModeAppend
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsAdminEmail reports whether email may use the admin interface.
func (c *Config) IsAdminEmail(email string) bool {
	if len(c.AdminEmails) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// ReplaceTags reports whether processing replaces existing tags.
func (s Settings) ReplaceTags() bool {
	return s.TagMode == models.TagModeReplace
}
