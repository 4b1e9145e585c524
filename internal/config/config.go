package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Accounting AccountingConfig
	Auth       AuthConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// Timezone is the business calendar used for all period boundaries
	// (weeks, months, quarters). Defaults to Europe/Paris.
	Timezone string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// RedisConfig holds the dashboard cache configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// TTL is the snapshot freshness window in seconds
	TTL int
}

// AccountingConfig holds configuration for the read-only MS SQL accounting
// export source. The connection is optional; the app runs without it.
type AccountingConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	QueryTimeout    int
}

// AuthConfig holds JWT bearer authentication settings
type AuthConfig struct {
	// Secret is the HMAC signing key for bearer tokens
	Secret string
	// Issuer expected in token claims
	Issuer string
	// TokenTTL in seconds, used when minting tokens
	TokenTTL int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// JobsConfig holds background job scheduling configuration
type JobsConfig struct {
	// WarmupCron is the cron expression for the dashboard cache warmup job
	WarmupCron string
	// AccountingSyncCron is the cron expression for the accounting payment sync
	AccountingSyncCron string
	// JobTimeout in seconds, applied to each job run
	JobTimeout int
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (a *AccountingConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(a.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns the query timeout as duration
func (a *AccountingConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(a.QueryTimeout) * time.Second
}

// TTLDuration returns the cache TTL as duration
func (r *RedisConfig) TTLDuration() time.Duration {
	return time.Duration(r.TTL) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// JobTimeoutDuration returns the per-job timeout as duration
func (j *JobsConfig) JobTimeoutDuration() time.Duration {
	return time.Duration(j.JobTimeout) * time.Second
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = v.GetString("JWT_SECRET")
	}
	if v.GetBool("ACCOUNTING_ENABLED") {
		cfg.Accounting.Enabled = true
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Gestion API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.timezone", "Europe/Paris")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "gestion")
	v.SetDefault("database.user", "gestion_user")
	v.SetDefault("database.password", "gestion_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Redis cache defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 120)

	// Accounting export source defaults (MS SQL Server - optional, read-only)
	v.SetDefault("accounting.enabled", false)
	v.SetDefault("accounting.port", 1433)
	v.SetDefault("accounting.maxOpenConns", 5)
	v.SetDefault("accounting.maxIdleConns", 2)
	v.SetDefault("accounting.connMaxLifetime", 300)
	v.SetDefault("accounting.queryTimeout", 30)

	// Auth defaults
	v.SetDefault("auth.issuer", "gestion-api")
	v.SetDefault("auth.tokenTTL", 3600)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db"})

	// Jobs defaults
	v.SetDefault("jobs.warmupCron", "@every 10m")
	v.SetDefault("jobs.accountingSyncCron", "0 15 * * * *")
	v.SetDefault("jobs.jobTimeout", 300)
}
