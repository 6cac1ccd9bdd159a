package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	CredentialsKeyring = "keyring"
	CredentialsFile    = "file"
	CredentialsMemory  = "memory"
)

type Config struct {
	// HTTP Server
	Port string

	// Persistence
	DataDir        string // empty: per-user config dir
	DataFile       string // empty: <DataDir>/transactions.json
	StorageBackend string
	SQLiteDBPath   string // empty: <DataDir>/pocketbook.db
	SaveDebounce   time.Duration
	WriteTimeout   time.Duration

	// Startup behaviour
	SeedDemoData  bool
	SeedValue     int64
	FirstRunReset bool

	// Credentials
	CredentialBackend string
	CredentialsFile   string // empty: <DataDir>/credentials.json
	KeyringService    string

	// AMQP change feed, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Presentation and caching
	CurrencySymbol string
	CacheTTL       time.Duration

	// Rate limiting of mutating requests
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataDir:        getEnv("DATA_DIR", ""),
		DataFile:       getEnv("DATA_FILE", ""),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", ""),
		SaveDebounce:   getEnvDuration("SAVE_DEBOUNCE", 500*time.Millisecond),
		WriteTimeout:   getEnvDuration("WRITE_TIMEOUT", 10*time.Second),

		SeedDemoData:  getEnvBool("SEED_DEMO_DATA", false),
		SeedValue:     int64(getEnvInt("SEED_VALUE", 0)),
		FirstRunReset: getEnvBool("FIRST_RUN_RESET", false),

		CredentialBackend: getEnv("CREDENTIAL_BACKEND", CredentialsFile),
		CredentialsFile:   getEnv("CREDENTIALS_FILE", ""),
		KeyringService:    getEnv("KEYRING_SERVICE", "pocketbook"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pocketbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_changes"),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₽"),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendFile, BackendSQLite}
	if !slices.Contains(validBackends, c.StorageBackend) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validBackends))
	}

	if c.SaveDebounce < 0 {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must not be negative", c.SaveDebounce))
	} else if c.SaveDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must be at most 1 minute", c.SaveDebounce))
	}
	if c.WriteTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid write timeout %v: must be at least 100ms", c.WriteTimeout))
	}

	validCredentials := []string{CredentialsKeyring, CredentialsFile, CredentialsMemory}
	if !slices.Contains(validCredentials, c.CredentialBackend) {
		errors = append(errors, fmt.Sprintf("invalid credential backend '%s': must be one of %v", c.CredentialBackend, validCredentials))
	}
	if c.CredentialBackend == CredentialsKeyring && c.KeyringService == "" {
		errors = append(errors, "keyring service cannot be empty when using keyring credentials")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
