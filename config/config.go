package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"prakriti-darpan/kv"

	"github.com/joho/godotenv"
)

// Local store backends
const (
	LocalFile   = "file"
	LocalSQLite = "sqlite"
	LocalRedis  = "redis"
	LocalMemory = "memory"
)

// Remote table backends
const (
	RemoteMongo    = "mongo"
	RemotePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string

	// Remote table; used only when both URL and key are set
	RemoteURL  string
	RemoteKey  string
	RemoteName string

	LocalStore      string
	LocalStorePath  string
	LocalStoreQuota int64

	RedisAddress  string
	RedisPassword string

	GeminiAPIKey string
	GeminiModel  string

	ClassifyDailyLimit int
	SeedOnStart        bool
	CORSOrigins        []string
}

// Load reads the given .env files (".env" when none are passed) and returns a
// populated Config. Missing env files are not an error.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file found, using process environment", "err", err)
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RemoteURL:  getEnv("REMOTE_DB_URL", ""),
		RemoteKey:  getEnv("REMOTE_DB_KEY", ""),
		RemoteName: getEnv("REMOTE_DB_NAME", "prakriti_darpan"),

		LocalStore:      strings.ToLower(getEnv("LOCAL_STORE", LocalFile)),
		LocalStorePath:  getEnv("LOCAL_STORE_PATH", "./data"),
		LocalStoreQuota: int64(getEnvInt("LOCAL_STORE_QUOTA_BYTES", kv.DefaultQuota)),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		ClassifyDailyLimit: getEnvInt("CLASSIFY_DAILY_LIMIT", 50),
		SeedOnStart:        getEnvBool("SEED_ON_START", true),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}
}

// RemoteConfigured reports whether reports should go to the remote table.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteURL != "" && c.RemoteKey != ""
}

// RemoteBackend picks the table implementation from the remote URL scheme.
func (c *Config) RemoteBackend() (string, error) {
	u, err := url.Parse(c.RemoteURL)
	if err != nil {
		return "", fmt.Errorf("config: parse REMOTE_DB_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return RemoteMongo, nil
	case "postgres", "postgresql":
		return RemotePostgres, nil
	default:
		return "", fmt.Errorf("config: unsupported REMOTE_DB_URL scheme %q", u.Scheme)
	}
}

// RemoteDSN returns the remote URL with the remote key set as its password.
// A URL without a user gets the default "prakriti" user.
func (c *Config) RemoteDSN() (string, error) {
	u, err := url.Parse(c.RemoteURL)
	if err != nil {
		return "", fmt.Errorf("config: parse REMOTE_DB_URL: %w", err)
	}
	user := "prakriti"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.RemoteKey)
	return u.String(), nil
}

// Validate reports configuration that can never work.
func (c *Config) Validate() error {
	var errs []error
	switch c.LocalStore {
	case LocalFile, LocalSQLite, LocalMemory:
	case LocalRedis:
		if c.RedisAddress == "" {
			errs = append(errs, errors.New("LOCAL_STORE=redis requires REDIS_ADDRESS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOCAL_STORE %q", c.LocalStore))
	}
	if c.RemoteConfigured() {
		if _, err := c.RemoteBackend(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedactURI hides credentials in a connection string for logging.
func RedactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
