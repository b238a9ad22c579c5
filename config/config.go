// Package config loads application configuration from environment
// variables with sensible development defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// HTTP server
	HTTP HTTPConfig

	// Database
	Database DatabaseConfig

	// Redis (presence tracking)
	Redis RedisConfig

	// Auth (password hashing, session tokens)
	Auth AuthConfig

	// Matching (proximity search)
	Matching MatchingConfig

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// Requests per minute per IP (0 = disabled)
	RateLimitPerMinute int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	// Connection pool settings
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration

	// Run schema migrations on startup
	AutoMigrate bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize    int
	DialTimeout time.Duration

	// How long a presence key lives without renewal
	PresenceTTL time.Duration

	// Enable for development without Redis; online states degrade to
	// all-offline
	Disabled bool
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Secret signs session tokens. Required outside development.
	JWTSecret string

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration

	// BcryptCost is the password hashing cost factor.
	BcryptCost int
}

// MatchingConfig holds proximity search settings.
type MatchingConfig struct {
	// RadiusDegrees is the half-size of the search bounding box, in
	// degrees of latitude/longitude.
	RadiusDegrees float64
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App = loadAppConfig()
	cfg.HTTP = loadHTTPConfig()
	cfg.Database = loadDatabaseConfig()
	cfg.Redis = loadRedisConfig()
	cfg.Auth = loadAuthConfig()
	cfg.Matching = loadMatchingConfig()
	cfg.Observability = loadObservabilityConfig()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))

	return AppConfig{
		Name:            getEnv("APP_NAME", "scribe-connect-vision"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:               getEnv("HTTP_HOST", "0.0.0.0"),
		Port:               getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		EnableCORS:         getEnvBool("HTTP_ENABLE_CORS", true),
		AllowedOrigins:     getEnvStringSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("HTTP_RATE_LIMIT_PER_MINUTE", 120),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		Name:            getEnv("DB_NAME", "scribe_connect"),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		ConnectTimeout:  getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnvInt("REDIS_PORT", 6379),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          getEnvInt("REDIS_DB", 0),
		PoolSize:    getEnvInt("REDIS_POOL_SIZE", 10),
		DialTimeout: getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		PresenceTTL: getEnvDuration("REDIS_PRESENCE_TTL", 5*time.Minute),
		Disabled:    getEnvBool("REDIS_DISABLED", false),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:  getEnv("JWT_SECRET", ""),
		TokenTTL:   getEnvDuration("JWT_TOKEN_TTL", 24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),
	}
}

func loadMatchingConfig() MatchingConfig {
	return MatchingConfig{
		RadiusDegrees: getEnvFloat("MATCH_RADIUS_DEGREES", 0.1),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	var errs []string

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, "HTTP_PORT must be 1-65535")
	}

	if c.Auth.JWTSecret == "" {
		if c.App.Environment == EnvProduction {
			errs = append(errs, "JWT_SECRET is required in production")
		}
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, "BCRYPT_COST must be 4-31")
	}

	if c.Matching.RadiusDegrees <= 0 {
		errs = append(errs, "MATCH_RADIUS_DEGREES must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
