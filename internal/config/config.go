package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. Access and refresh tokens
// carry independent secrets so signing material rotates independently.
type AuthConfig struct {
	AccessTokenSecret       string
	RefreshTokenSecret      string
	AccessTokenTTLMinutes   int
	RefreshTokenTTLDays     int
	RefreshCookiePath       string
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// RateLimitQuota is a fixed request budget per rolling window.
type RateLimitQuota struct {
	Requests int
	Window   time.Duration
}

// RateLimitConfig declares per-endpoint-class abuse quotas.
type RateLimitConfig struct {
	Enabled  bool
	Login    RateLimitQuota
	Register RateLimitQuota
	Refresh  RateLimitQuota
	General  RateLimitQuota
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessTokenSecret:       os.Getenv("AUTH_ACCESS_TOKEN_SECRET"),
			RefreshTokenSecret:      os.Getenv("AUTH_REFRESH_TOKEN_SECRET"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshTokenTTLDays:     getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_DAYS", 30),
			RefreshCookiePath:       getEnv("AUTH_REFRESH_COOKIE_PATH", "/auth/refresh"),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Login: RateLimitQuota{
				Requests: getEnvAsInt("RATE_LIMIT_LOGIN_REQUESTS", 5),
				Window:   time.Duration(getEnvAsInt("RATE_LIMIT_LOGIN_WINDOW_MINUTES", 5)) * time.Minute,
			},
			Register: RateLimitQuota{
				Requests: getEnvAsInt("RATE_LIMIT_REGISTER_REQUESTS", 2),
				Window:   time.Duration(getEnvAsInt("RATE_LIMIT_REGISTER_WINDOW_MINUTES", 1)) * time.Minute,
			},
			Refresh: RateLimitQuota{
				Requests: getEnvAsInt("RATE_LIMIT_REFRESH_REQUESTS", 10),
				Window:   time.Duration(getEnvAsInt("RATE_LIMIT_REFRESH_WINDOW_MINUTES", 15)) * time.Minute,
			},
			General: RateLimitQuota{
				Requests: getEnvAsInt("RATE_LIMIT_GENERAL_REQUESTS", 100),
				Window:   time.Duration(getEnvAsInt("RATE_LIMIT_GENERAL_WINDOW_MINUTES", 15)) * time.Minute,
			},
		},
	}

	if cfg.App.Env == "development" {
		if cfg.Auth.AccessTokenSecret == "" {
			cfg.Auth.AccessTokenSecret = "dev-access-secret"
		}
		if cfg.Auth.RefreshTokenSecret == "" {
			cfg.Auth.RefreshTokenSecret = "dev-refresh-secret"
		}
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Development reports whether the service runs in development mode.
func (a AppConfig) Development() bool {
	return a.Env == "development"
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	if a.RefreshTokenTTLDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(a.RefreshTokenTTLDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
