// Package config loads service configuration from the environment.
//
// Values are read from process environment variables, optionally seeded from
// a local .env file. Every key has a default except the ones checked by
// Validate.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the quiz service.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	LogQueries  bool
	AutoMigrate bool
}

// AuthConfig controls token signing and the single-session rule.
type AuthConfig struct {
	Secret     string
	SessionTTL string
	// StrictSession makes every authenticated request re-check that the
	// caller still owns a live session row, so logout takes effect before
	// the signed token expires.
	StrictSession bool
}

type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// RedisConfig is optional. An empty Addr selects the in-process limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig is optional. An empty URL disables event publishing.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	Timeout             string
	ReadinessDrainDelay string
}

// Load reads .env (if present) and the environment into a Config.
func Load() *Config {
	// .env is optional; real deployments inject variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Service: ServiceConfig{
			Name:    v.GetString("SERVICE_NAME"),
			Version: v.GetString("SERVICE_VERSION"),
			Env:     v.GetString("ENV"),
			Port:    v.GetString("PORT"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			DSN:         v.GetString("DB_DSN"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			MinConns:    v.GetInt32("DB_MIN_CONNS"),
			LogQueries:  v.GetBool("DB_LOG_QUERIES"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			Secret:        v.GetString("AUTH_SECRET"),
			SessionTTL:    v.GetString("AUTH_SESSION_TTL"),
			StrictSession: v.GetBool("AUTH_STRICT_SESSION"),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: v.GetInt("LOGIN_RATE_LIMIT_PER_MIN"),
			LoginBurst:     v.GetInt("LOGIN_RATE_LIMIT_BURST"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		Tracing: TracingConfig{
			Enabled:    v.GetBool("TRACING_ENABLED"),
			Endpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SampleRate: v.GetFloat64("OTEL_SAMPLE_RATE"),
		},
		Profiling: ProfilingConfig{
			Enabled:  v.GetBool("PROFILING_ENABLED"),
			Endpoint: v.GetString("PYROSCOPE_ENDPOINT"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             v.GetString("SHUTDOWN_TIMEOUT"),
			ReadinessDrainDelay: v.GetString("READINESS_DRAIN_DELAY"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "quizcards")
	v.SetDefault("SERVICE_VERSION", "dev")
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_LOG_QUERIES", false)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("AUTH_SESSION_TTL", "10m")
	v.SetDefault("AUTH_STRICT_SESSION", true)

	v.SetDefault("LOGIN_RATE_LIMIT_PER_MIN", 20)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 5)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NATS_SUBJECT_PREFIX", "quiz")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_SAMPLE_RATE", 0.1)
	v.SetDefault("PROFILING_ENABLED", false)
	v.SetDefault("PYROSCOPE_ENDPOINT", "http://localhost:4040")

	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("READINESS_DRAIN_DELAY", "5s")
}

// Validate reports every configuration problem found, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if len(c.Auth.Secret) < 32 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 32 bytes"))
	}
	if ttl, err := time.ParseDuration(c.Auth.SessionTTL); err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_TTL %q is not a positive duration", c.Auth.SessionTTL))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE %v must be within [0, 1]", c.Tracing.SampleRate))
	}
	if _, err := time.ParseDuration(c.Shutdown.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT %q: %w", c.Shutdown.Timeout, err))
	}
	if _, err := time.ParseDuration(c.Shutdown.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("READINESS_DRAIN_DELAY %q: %w", c.Shutdown.ReadinessDrainDelay, err))
	}

	return errors.Join(errs...)
}

// GetSessionTTLDuration returns the session and token lifetime.
func (c *Config) GetSessionTTLDuration() time.Duration {
	return parseDuration(c.Auth.SessionTTL, 10*time.Minute)
}

func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.Shutdown.Timeout, 10*time.Second)
}

func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return parseDuration(c.Shutdown.ReadinessDrainDelay, 5*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
