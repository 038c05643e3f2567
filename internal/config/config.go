package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinSessionSecretLength is the shortest accepted signing secret in bytes
const MinSessionSecretLength = 32

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis session store configuration
	Redis RedisConfig

	// Session and login configuration
	Auth AuthConfig

	// System metrics collector configuration
	Metrics MetricsConfig

	// Audit fan-out configuration
	Audit AuditConfig

	// Logging configuration
	Log LogConfig

	MigrationsPath string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig holds session store settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds session and login throttling settings
type AuthConfig struct {
	SessionSecret    string
	SessionTTL       time.Duration
	CookieName       string
	CookieSecure     bool
	MaxLoginAttempts int
	LockoutWindow    time.Duration
	BcryptCost       int
}

// MetricsConfig holds system metrics collector settings
type MetricsConfig struct {
	CollectorEnabled bool
	SampleInterval   time.Duration
	DiskPath         string
}

// AuditConfig holds the optional AMQP audit publisher settings.
// An empty URL disables publishing.
type AuditConfig struct {
	AMQPURL string
	Queue   string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"SERVER_READ_TIMEOUT":       30 * time.Second,
	"SERVER_WRITE_TIMEOUT":      30 * time.Second,
	"SERVER_SHUTDOWN_TIMEOUT":   30 * time.Second,
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "5432",
	"DB_USER":                   "postgres",
	"DB_PASSWORD":               "postgres",
	"DB_NAME":                   "climate_dashboard",
	"DB_SSLMODE":                "disable",
	"DB_MAX_OPEN_CONNS":         25,
	"DB_MAX_IDLE_CONNS":         5,
	"DB_MAX_LIFETIME":           5 * time.Minute,
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"SESSION_SECRET":            "",
	"SESSION_TTL":               12 * time.Hour,
	"SESSION_COOKIE":            "climate_session",
	"SESSION_SECURE":            false,
	"AUTH_MAX_LOGIN_ATTEMPTS":   5,
	"AUTH_LOCKOUT_WINDOW":       15 * time.Minute,
	"AUTH_BCRYPT_COST":          12,
	"METRICS_COLLECTOR_ENABLED": true,
	"METRICS_SAMPLE_INTERVAL":   time.Minute,
	"METRICS_DISK_PATH":         "/",
	"AMQP_URL":                  "",
	"AUDIT_QUEUE":               "climate.audit",
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
	"MIGRATIONS_PATH":           "./migrations",
	"CONFIG_PATH":               "",
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_PATH and environment variables, in increasing precedence
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxLifetime:  v.GetDuration("DB_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			SessionSecret:    v.GetString("SESSION_SECRET"),
			SessionTTL:       v.GetDuration("SESSION_TTL"),
			CookieName:       v.GetString("SESSION_COOKIE"),
			CookieSecure:     v.GetBool("SESSION_SECURE"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutWindow:    v.GetDuration("AUTH_LOCKOUT_WINDOW"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
		},
		Metrics: MetricsConfig{
			CollectorEnabled: v.GetBool("METRICS_COLLECTOR_ENABLED"),
			SampleInterval:   v.GetDuration("METRICS_SAMPLE_INTERVAL"),
			DiskPath:         v.GetString("METRICS_DISK_PATH"),
		},
		Audit: AuditConfig{
			AMQPURL: v.GetString("AMQP_URL"),
			Queue:   v.GetString("AUDIT_QUEUE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return errors.New("DB_NAME is required")
	}
	if len(c.Auth.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		return errors.New("AUTH_MAX_LOGIN_ATTEMPTS must be positive")
	}
	if c.Auth.LockoutWindow <= 0 {
		return errors.New("AUTH_LOCKOUT_WINDOW must be positive")
	}
	if c.Metrics.CollectorEnabled && c.Metrics.SampleInterval <= 0 {
		return errors.New("METRICS_SAMPLE_INTERVAL must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
