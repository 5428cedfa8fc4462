package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

// RedisConfig is optional. An empty URL disables idempotency keys.
type RedisConfig struct {
	URL string
}

type SessionConfig struct {
	ExpiryHours int
}

// BookingConfig bounds how long a reservation may wait on a contended event.
type BookingConfig struct {
	MaxRetries     int
	RetryBackoff   time.Duration
	LockTimeout    time.Duration
	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom reads an env-style file, then lets process environment override it.
// A missing file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "event-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)
	v.SetDefault("BOOKING_MAX_RETRIES", 3)
	v.SetDefault("BOOKING_RETRY_BACKOFF", "50ms")
	v.SetDefault("BOOKING_LOCK_TIMEOUT", "2s")
	v.SetDefault("BOOKING_REQUEST_TIMEOUT", "10s")
	v.SetDefault("BOOKING_IDEMPOTENCY_TTL", "24h")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Port:        v.GetString("PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASS"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Session: SessionConfig{
			ExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Booking: BookingConfig{
			MaxRetries:     v.GetInt("BOOKING_MAX_RETRIES"),
			RetryBackoff:   v.GetDuration("BOOKING_RETRY_BACKOFF"),
			LockTimeout:    v.GetDuration("BOOKING_LOCK_TIMEOUT"),
			RequestTimeout: v.GetDuration("BOOKING_REQUEST_TIMEOUT"),
			IdempotencyTTL: v.GetDuration("BOOKING_IDEMPOTENCY_TTL"),
		},
	}

	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
