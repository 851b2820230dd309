package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	ClinicAPIURL        string
	ClinicAPITimeout    time.Duration
	ClinicAPIMaxRetries int
	ClinicAPIBackoff    time.Duration

	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	CookieName    string
	CookieSecure  bool

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	DatabaseURL   string

	BookingRedirectDelay time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ClinicAPIURL:         strings.TrimRight(getEnv("CLINIC_API_URL", "http://localhost:5000/api"), "/"),
		ClinicAPITimeout:     getEnvAsDuration("CLINIC_API_TIMEOUT", 10*time.Second),
		ClinicAPIMaxRetries:  getEnvAsInt("CLINIC_API_MAX_RETRIES", 2),
		ClinicAPIBackoff:     getEnvAsDuration("CLINIC_API_BACKOFF", 200*time.Millisecond),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		SessionStore:         strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", SessionStoreMemory))),
		CookieName:           getEnv("COOKIE_NAME", "clinic_session"),
		CookieSecure:         getEnvAsBool("COOKIE_SECURE", false),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		BookingRedirectDelay: getEnvAsDuration("BOOKING_REDIRECT_DELAY", 3*time.Second),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:         getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:       getEnvAsInt("RATE_LIMIT_BURST", 40),
		ShutdownTimeout:      getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports settings that would leave the portal unable to serve.
func (c *Config) Validate() error {
	var errs []error
	if c.ClinicAPIURL == "" {
		errs = append(errs, errors.New("CLINIC_API_URL is required"))
	}
	if c.SessionSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("SESSION_SECRET is required in production"))
		}
	}
	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis session store"))
		}
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
