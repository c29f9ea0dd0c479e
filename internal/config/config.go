package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential storage backends.
const (
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName     string
	Environment string
	API         APIConfig
	Credentials CredentialsConfig
	Redis       RedisConfig
	Sync        SyncConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type APIConfig struct {
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxConns     int
}

type CredentialsConfig struct {
	Store      string
	BoltPath   string
	SQLitePath string
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type SyncConfig struct {
	Interval time.Duration
	// Schedule is a cron spec with seconds; empty means every Interval.
	Schedule       string
	RefreshSession bool
}

type ContextConfig struct {
	// RequestTimeout bounds each backend call; zero leaves calls unbounded.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suited to a local CLI session.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	dataDir := defaultDataDir()

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskdesk"),
		Environment: getString("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:      strings.TrimRight(getString("API_URL", "http://localhost:3001/api"), "/"),
			ReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 0),
			WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 0),
			MaxConns:     getInt("HTTP_MAX_CONNS", 0),
		},
		Credentials: CredentialsConfig{
			Store:      strings.ToLower(getString("CREDENTIAL_STORE", StoreBolt)),
			BoltPath:   getString("BOLTDB_PATH", filepath.Join(dataDir, "credentials.db")),
			SQLitePath: getString("SQLITE_PATH", filepath.Join(dataDir, "credentials.sqlite")),
		},
		Redis: RedisConfig{
			URL:       getString("REDIS_URL", "redis://localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getInt("REDIS_DB", 0),
			KeyPrefix: getString("REDIS_KEY_PREFIX", "taskdesk:"),
			TTL:       getDuration("REDIS_CREDENTIALS_TTL", 0),
		},
		Sync: SyncConfig{
			Interval:       getDuration("SYNC_INTERVAL", 0),
			Schedule:       os.Getenv("SYNC_SCHEDULE"),
			RefreshSession: getBool("SYNC_REFRESH_SESSION", true),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 0),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "warn"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}
	switch c.Credentials.Store {
	case StoreBolt, StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown CREDENTIAL_STORE %q", c.Credentials.Store)
	}
	return nil
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(dir, "taskdesk")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
