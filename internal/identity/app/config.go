package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/passage/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer     string        // Issuer claim for tokens (default: passage)
	SecretFile string        // Path to the token signing secret, generated if missing (default: ./secret)
	PepperFile string        // Path to the password pepper, generated if missing (default: ./pepper)
	SessionTTL time.Duration // Session token lifetime (default: 15m)
	ResetTTL   time.Duration // Reset token lifetime (default: 30m)

	ResetSingleUse       bool          // Reject replayed reset tokens (default: true)
	ResetURL             string        // Base URL the reset token is appended to (default: token only)
	ExposeResetToken     bool          // Echo the reset link in the API response (default: false)
	DatabaseDriver       string        // sqlite or postgres (default: sqlite)
	DatabaseFile         string        // SQLite database file (default: ./identity.db)
	DatabaseURL          string        // Postgres connection URL, required for the postgres driver
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("IDENTITY_ISSUER", "passage"),
		SecretFile:           getEnvOrDefault("IDENTITY_SECRET_FILE", "secret"),
		PepperFile:           getEnvOrDefault("IDENTITY_PEPPER_FILE", "pepper"),
		SessionTTL:           getEnvDurationOrDefault("IDENTITY_SESSION_TTL", jwtx.DefaultSessionTTL),
		ResetTTL:             getEnvDurationOrDefault("IDENTITY_RESET_TTL", jwtx.DefaultResetTTL),
		ResetSingleUse:       getEnvBoolOrDefault("IDENTITY_RESET_SINGLE_USE", true),
		ResetURL:             os.Getenv("IDENTITY_RESET_URL"),
		ExposeResetToken:     getEnvBoolOrDefault("IDENTITY_EXPOSE_RESET_TOKEN", false),
		DatabaseDriver:       strings.ToLower(getEnvOrDefault("IDENTITY_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:         getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		DatabaseURL:          os.Getenv("IDENTITY_DATABASE_URL"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.SessionTTL < time.Second {
		errs = append(errs, fmt.Errorf("IDENTITY_SESSION_TTL must be at least 1s, got %s", c.SessionTTL))
	}
	if c.ResetTTL < time.Second {
		errs = append(errs, fmt.Errorf("IDENTITY_RESET_TTL must be at least 1s, got %s", c.ResetTTL))
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("IDENTITY_DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("IDENTITY_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
