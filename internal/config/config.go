package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	MasterSecret string // shared HMAC secret for link keys
	JWTSecret    string // bot-facing API auth

	// Bot
	BotUsername string
	BotToken    string
	AdminUserID int64

	// Link policy
	FreeLinkExpiry time.Duration // free-tier links expire after this window

	// Rate limiting (successful accesses per link owner within the window)
	RateLimit              int
	RateLimitWindow        time.Duration
	RateLimitFailOpen      bool
	RateLimitExemptPremium bool

	// Background sweeps
	LinkSweepInterval    time.Duration
	PremiumSweepInterval time.Duration

	// Uploads
	MaxUploadSize int64

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "FileGate"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL embedded in generated links
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filegate.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		MasterSecret: envRequired("MASTER_SECRET"),
		JWTSecret:    envRequired("JWT_SECRET"),

		// Bot
		BotUsername: envRequired("BOT_USERNAME"),
		BotToken:    envString("BOT_TOKEN", ""), // optional: empty disables expiry notifications
		AdminUserID: envInt64("ADMIN_USER_ID", 0),

		// Link policy
		FreeLinkExpiry: envDuration("FREE_LINK_EXPIRY", 24*time.Hour),

		// Rate limiting
		RateLimit:              envInt("RATE_LIMIT", 10),
		RateLimitWindow:        envDuration("RATE_LIMIT_WINDOW", time.Hour),
		RateLimitFailOpen:      envBool("RATE_LIMIT_FAIL_OPEN", true),
		RateLimitExemptPremium: envBool("RATE_LIMIT_EXEMPT_PREMIUM", true),

		// Background sweeps
		LinkSweepInterval:    envDuration("LINK_SWEEP_INTERVAL", 12*time.Hour),
		PremiumSweepInterval: envDuration("PREMIUM_SWEEP_INTERVAL", 6*time.Hour),

		// Uploads
		MaxUploadSize: envInt64("MAX_UPLOAD_SIZE", 2<<30), // 2GB

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envRequired("S3_REGION"),
		S3Bucket:    envRequired("S3_BUCKET"),
		S3AccessKey: envRequired("S3_ACCESS_KEY"),
		S3SecretKey: envRequired("S3_SECRET_KEY"),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
