// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database types accepted by -t / DATABASE_TYPE.
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
	DatabaseMemory   = "memory"
)

const (
	DefaultPort               = 3318
	DefaultBlobDir            = "data/blobs"
	DefaultMongoDatabase      = "partyplanner"
	DefaultBackendTimeout     = 10 * time.Second
	DefaultSessionIdleTimeout = 2 * time.Hour
)

type Config struct {
	Port               int
	DatabaseType       string
	DatabaseURL        string
	MongoDatabase      string
	RedisURL           string
	BlobDir            string
	PublicBaseURL      string
	EventStart         time.Time
	BackendTimeout     time.Duration
	SessionIdleTimeout time.Duration
}

// LoadEnv reads KEY=value pairs from the given files into the environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadEnv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var eventStart string

	fset := flag.NewFlagSet("partyplanner", flag.ContinueOnError)

	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres, mongo or memory)")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.MongoDatabase, "mongo-db", "", "Mongo database name")
	fset.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for device identities")
	fset.StringVar(&cfg.BlobDir, "blobs", "", "Directory for uploaded photos")
	fset.StringVar(&cfg.PublicBaseURL, "public-url", "", "Public base URL for photo links")
	fset.StringVar(&eventStart, "event-start", "", "Party start time (RFC 3339)")
	fset.DurationVar(&cfg.BackendTimeout, "backend-timeout", 0, "Timeout for each backend call")
	fset.DurationVar(&cfg.SessionIdleTimeout, "idle-timeout", 0, "Idle time before a session is dropped")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	cfg.DatabaseType = fallback(cfg.DatabaseType, "DATABASE_TYPE", DatabaseSQLite)
	if !slices.Contains([]string{DatabaseSQLite, DatabasePostgres, DatabaseMongo, DatabaseMemory}, cfg.DatabaseType) {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	cfg.DatabaseURL = fallback(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" && cfg.DatabaseType != DatabaseMemory {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.MongoDatabase = fallback(cfg.MongoDatabase, "MONGO_DATABASE", DefaultMongoDatabase)
	cfg.RedisURL = fallback(cfg.RedisURL, "REDIS_URL", "")
	cfg.BlobDir = fallback(cfg.BlobDir, "BLOB_DIR", DefaultBlobDir)
	cfg.PublicBaseURL = fallback(cfg.PublicBaseURL, "PUBLIC_BASE_URL", "")

	eventStart = fallback(eventStart, "EVENT_START", "")
	if eventStart == "" {
		return Config{}, errors.New("EVENT_START required (RFC 3339)")
	}
	start, err := time.Parse(time.RFC3339, eventStart)
	if err != nil {
		return Config{}, fmt.Errorf("invalid EVENT_START: %w", err)
	}
	cfg.EventStart = start

	if cfg.BackendTimeout, err = durationFallback(cfg.BackendTimeout, "BACKEND_TIMEOUT", DefaultBackendTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTimeout, err = durationFallback(cfg.SessionIdleTimeout, "SESSION_IDLE_TIMEOUT", DefaultSessionIdleTimeout); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func fallback(value, env, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func durationFallback(value time.Duration, env string, def time.Duration) (time.Duration, error) {
	if value > 0 {
		return value, nil
	}
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", env)
	}
	return d, nil
}
