// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chronicle_backend/internal/platform/db"
	platformredis "chronicle_backend/internal/platform/redis"
)

// Backend selectors.
const (
	KVBackendAuto  = "auto"
	KVBackendRedis = "redis"
	KVBackendSQL   = "sql"

	IdentityLocal  = "local"
	IdentityGoTrue = "gotrue"

	EventsNone  = "none"
	EventsRedis = "redis"
	EventsKafka = "kafka"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port        string
	RoutePrefix string
	LogLevel    slog.Level

	KVBackend string
	Redis     platformredis.Config
	DB        db.Config

	IdentityProvider  string
	JWTSecret         string
	JWTExpiration     time.Duration
	AuthURL           string
	AuthServiceKey    string
	AuthAnonKey       string
	IdentityTimeout   time.Duration
	IdentityRateLimit int

	EventsBackend string
	KafkaBrokers  []string
}

// Load reads .env (when present) and then the process environment.
// Variables already set in the environment take precedence over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		RoutePrefix: normalizePrefix(os.Getenv("ROUTE_PREFIX")),
		LogLevel:    parseLevel(getEnv("LOG_LEVEL", "info")),

		KVBackend: strings.ToLower(getEnv("KV_BACKEND", KVBackendAuto)),
		Redis: platformredis.Config{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		DB: db.LoadConfigFromEnv(),

		IdentityProvider:  strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityLocal)),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpiration:     getDuration("JWT_EXPIRATION", time.Hour),
		AuthURL:           strings.TrimRight(os.Getenv("AUTH_URL"), "/"),
		AuthServiceKey:    os.Getenv("AUTH_SERVICE_ROLE_KEY"),
		AuthAnonKey:       os.Getenv("AUTH_ANON_KEY"),
		IdentityTimeout:   getDuration("IDENTITY_TIMEOUT", 10*time.Second),
		IdentityRateLimit: getInt("IDENTITY_RATE_LIMIT", 0),

		EventsBackend: strings.ToLower(getEnv("EVENTS_BACKEND", EventsNone)),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment; using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment; using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// normalizePrefix turns "x", "/x/" and "/x" into "/x"; empty stays empty.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
