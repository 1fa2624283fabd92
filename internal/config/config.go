// Package config reads process configuration from the environment. A .env
// file, when present, is loaded by main before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    zerolog.Level
	Store       string
	DSN         string
	RedisAddr   string
	SnapshotTTL time.Duration
	SeedDemo    bool
	CORSOrigins []string
}

// Development is true unless APP_ENV names production.
func (c Config) Development() bool {
	return c.AppEnv != "production" && c.AppEnv != "prod"
}

func Load() (Config, error) {
	c := Config{
		Port:      env("PORT", "8080"),
		AppEnv:    strings.ToLower(env("APP_ENV", "development")),
		Store:     strings.ToLower(env("STORE", StorePostgres)),
		DSN:       dsn(),
		RedisAddr: strings.TrimSpace(os.Getenv("REDIS_ADDR")),
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(env("LOG_LEVEL", "info")))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	if c.Store != StorePostgres && c.Store != StoreMemory {
		return Config{}, fmt.Errorf("STORE: unknown store %q", c.Store)
	}

	c.SnapshotTTL, err = time.ParseDuration(env("SNAPSHOT_TTL", "5m"))
	if err != nil || c.SnapshotTTL <= 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_TTL: invalid duration %q", os.Getenv("SNAPSHOT_TTL"))
	}

	c.SeedDemo = c.Development()
	if raw := os.Getenv("SEED_DEMO"); raw != "" {
		if c.SeedDemo, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("SEED_DEMO: %w", err)
		}
	}

	for _, o := range strings.Split(env("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}
	return c, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// dsn prefers DB_DSN and otherwise assembles one from DB_* (or the
// POSTGRES_* names used by the postgres image).
func dsn() string {
	if d := strings.TrimSpace(os.Getenv("DB_DSN")); d != "" {
		return d
	}
	host := env("DB_HOST", "localhost")
	port := env("DB_PORT", "5432")
	user := env("DB_USER", env("POSTGRES_USER", "postgres"))
	pass := env("DB_PASSWORD", env("POSTGRES_PASSWORD", "postgres"))
	name := env("DB_NAME", env("POSTGRES_DB", "bikeconfig"))
	ssl := env("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}
