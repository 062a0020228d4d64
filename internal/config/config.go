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
	AppEnv  string
	Verbose bool

	// Image server
	APIBaseURL  string
	HTTPTimeout time.Duration // 0 means no timeout
	UserAgent   string

	// History (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	HistoryLimit int

	// Watcher
	WatchLogFile string
	ProjectName  string // prefixes uploaded filenames as {project}_{name}

	// Export
	ExportDir string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.), only used by export --to s3
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Prefix    string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return &Config{
		AppEnv:  envString("APP_ENV", "development"),
		Verbose: envBool("VERBOSE", false),

		APIBaseURL:  envString("API_BASE_URL", "http://127.0.0.1:8000"),
		HTTPTimeout: envDuration("HTTP_TIMEOUT", 0),
		UserAgent:   envString("USER_AGENT", "imagehost-cli/1.0"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/imagehost.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		HistoryLimit: envInt("HISTORY_LIMIT", 5),

		WatchLogFile: envString("WATCH_LOG_FILE", "log.txt"),
		ProjectName:  envString("PROJECT_NAME", ""),

		ExportDir: envString("EXPORT_DIR", "./export"),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:    envString("S3_REGION", "us-east-1"),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3Prefix:    envString("S3_PREFIX", "images"),
	}
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
	if err != nil || n < 0 {
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

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasS3 reports whether enough S3 settings are present to export to a bucket
func (c *Config) HasS3() bool {
	return c.S3Bucket != ""
}
