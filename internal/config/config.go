// Package config loads runtime settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Auth      AuthConfig
	Poller    PollerConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// Addr is the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
}

type AuthConfig struct {
	// JWTSecret empty disables token issuance and the /me route.
	JWTSecret string
	JWTExpiry time.Duration
}

type PollerConfig struct {
	Interval time.Duration
}

type CORSConfig struct {
	// AllowedOrigins empty means any origin.
	AllowedOrigins []string
}

type RateLimitConfig struct {
	// LoginPerMinute limits /signup and /login per client IP. 0 disables.
	LoginPerMinute int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the environment. Malformed values are collected and returned
// together so an operator sees every mistake at once.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", 5000, &errs),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/chronoflow"),
			MongoDatabase: getEnv("MONGO_DATABASE", "chronoflow"),
			SQLitePath:    getEnv("DB_PATH", "data/chronoflow.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24, &errs)) * time.Hour,
		},
		Poller: PollerConfig{
			Interval: getEnvDuration("POLL_INTERVAL", time.Minute, &errs),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 20, &errs),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", cfg.Server.Port))
	}
	if cfg.Store.Driver != DriverMongo && cfg.Store.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverSQLite, cfg.Store.Driver))
	}
	if cfg.Auth.JWTSecret != "" && len(cfg.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if cfg.Poller.Interval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.Poller.Interval))
	}
	if cfg.RateLimit.LoginPerMinute < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MINUTE must not be negative"))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("30s", "2m") and bare integers as seconds.
func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a duration", key, value))
		return fallback
	}
	return d
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
