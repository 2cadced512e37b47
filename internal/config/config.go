package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/cinema-service/internal/auth/hashparams"
)

// devJWTSecret is only accepted when APP_ENV=development.
const devJWTSecret = "dev-secret-change-me-0123456789abcdef"

// minJWTSecretLen mirrors the HS256 key size.
const minJWTSecretLen = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
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
	MigrationsDir  string
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
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters. It is read once at start.
type AuthConfig struct {
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	Argon2Time       int
	Argon2MemoryKiB  int
	Argon2Threads    int
	HashWorkers      int
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	appEnv := getEnv("APP_ENV", "development")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "cinema-service"),
			Env:                   appEnv,
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
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: appEnv == "development",
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTL:   getEnvAsDuration("AUTH_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:  getEnvAsDuration("AUTH_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Argon2Time:       getEnvAsInt("AUTH_ARGON2_TIME", 1),
			Argon2MemoryKiB:  getEnvAsInt("AUTH_ARGON2_MEMORY_KIB", 64*1024),
			Argon2Threads:    getEnvAsInt("AUTH_ARGON2_THREADS", 4),
			HashWorkers:      getEnvAsInt("AUTH_HASH_WORKERS", runtime.NumCPU()),
			LoginMaxAttempts: getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginLockout:     getEnvAsDuration("AUTH_LOGIN_LOCKOUT", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the auth core cannot run with.
func (c *Config) Validate() error {
	a := c.Auth
	switch {
	case a.JWTSecret == "":
		return errors.New("AUTH_JWT_SECRET is required")
	case a.JWTSecret == devJWTSecret && c.App.Env != "development":
		return fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV=%s", c.App.Env)
	case len(a.JWTSecret) < minJWTSecretLen:
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	case a.AccessTokenTTL <= 0 || a.RefreshTokenTTL <= 0:
		return errors.New("token ttls must be positive")
	case a.AccessTokenTTL >= a.RefreshTokenTTL:
		return fmt.Errorf("AUTH_ACCESS_TOKEN_TTL (%s) must be shorter than AUTH_REFRESH_TOKEN_TTL (%s)",
			a.AccessTokenTTL, a.RefreshTokenTTL)
	case a.HashWorkers <= 0:
		return errors.New("AUTH_HASH_WORKERS must be positive")
	case a.LoginMaxAttempts < 0:
		return errors.New("AUTH_LOGIN_MAX_ATTEMPTS must not be negative")
	case a.LoginMaxAttempts > 0 && a.LoginLockout <= 0:
		return errors.New("AUTH_LOGIN_LOCKOUT must be positive when login attempts are limited")
	}
	if err := hashparams.Check(a.Argon2Time, a.Argon2MemoryKiB, a.Argon2Threads); err != nil {
		return fmt.Errorf("AUTH_ARGON2 settings: %w", err)
	}
	return nil
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
