// Package config reads runtime settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/fittrack/internal/backup"
)

const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// OfflineDemo serves every user from the local key-value cache instead
	// of the relational store.
	OfflineDemo  bool
	CacheBackend string
	RedisURL     string
	Location     *time.Location

	RateLimit float64
	RateBurst int

	Snapshot backup.Config
}

// Load reads .env from the working directory if present, then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getenv("FITTRACK_PORT", "8080"),
		DBPath:       getenv("FITTRACK_DB_PATH", "fittrack.db"),
		LogLevel:     getenv("FITTRACK_LOG_LEVEL", "info"),
		LogFormat:    getenv("FITTRACK_LOG_FORMAT", "text"),
		CacheBackend: getenv("FITTRACK_CACHE_BACKEND", CacheSQLite),
		RedisURL:     os.Getenv("REDIS_URL"),
		Location:     time.Local,
	}

	var err error
	if cfg.OfflineDemo, err = boolEnv("FITTRACK_OFFLINE_DEMO", false); err != nil {
		return nil, err
	}

	switch cfg.CacheBackend {
	case CacheSQLite:
	case CacheRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when FITTRACK_CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("FITTRACK_CACHE_BACKEND: unknown backend %q", cfg.CacheBackend)
	}

	if tz := os.Getenv("FITTRACK_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("FITTRACK_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if cfg.RateLimit, err = floatEnv("FITTRACK_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = intEnv("FITTRACK_RATE_BURST", 20); err != nil {
		return nil, err
	}

	cfg.Snapshot.S3 = backup.S3Config{
		Endpoint:  os.Getenv("FITTRACK_S3_ENDPOINT"),
		Bucket:    os.Getenv("FITTRACK_S3_BUCKET"),
		Region:    getenv("FITTRACK_S3_REGION", "us-east-1"),
		AccessKey: os.Getenv("FITTRACK_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("FITTRACK_S3_SECRET_KEY"),
	}
	cfg.Snapshot.Passphrase = os.Getenv("FITTRACK_SNAPSHOT_PASSPHRASE")
	if v := os.Getenv("FITTRACK_SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FITTRACK_SNAPSHOT_INTERVAL: %w", err)
		}
		cfg.Snapshot.Interval = d
	}
	if cfg.Snapshot.RetentionDays, err = intEnv("FITTRACK_SNAPSHOT_RETENTION_DAYS", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
