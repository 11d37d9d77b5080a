package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the booking client and its stub backend.
type Config struct {
	APIBaseURL     string
	Environment    string
	LogLevel       string
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Session        SessionConfig
	Stub           StubConfig
}

// SessionConfig selects where the session token and user projection persist.
type SessionConfig struct {
	Store       string
	File        string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string
}

// StubConfig holds the development backend settings.
type StubConfig struct {
	Port                 string
	Origin               string
	DBDriver             string
	DBDSN                string
	JWTSecret            string
	JWTExpirationMinutes int
	SlotDaysAhead        int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("SESSION_STORE", "file")
	v.SetDefault("SESSION_FILE", defaultSessionFile())
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "booking:session:")
	v.SetDefault("STUB_PORT", "8080")
	v.SetDefault("STUB_ORIGIN", "http://localhost:5173")
	v.SetDefault("STUB_DB_DRIVER", "sqlite")
	v.SetDefault("STUB_DB_DSN", "file:booking?mode=memory&cache=shared")
	v.SetDefault("JWT_SECRET", "default_jwt_secret")
	v.SetDefault("JWT_EXPIRATION_MINUTES", 60*24)
	v.SetDefault("SLOT_DAYS_AHEAD", 60)

	timeoutSeconds := v.GetInt("HTTP_TIMEOUT_SECONDS")
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %d", timeoutSeconds)
	}

	jwtExpMinutes := v.GetInt("JWT_EXPIRATION_MINUTES")
	if jwtExpMinutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %d", jwtExpMinutes)
	}

	store := v.GetString("SESSION_STORE")
	if store != "file" && store != "redis" {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want file or redis", store)
	}

	return &Config{
		APIBaseURL:     v.GetString("API_BASE_URL"),
		Environment:    v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		HTTPTimeout:    time.Duration(timeoutSeconds) * time.Second,
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		Session: SessionConfig{
			Store:       store,
			File:        v.GetString("SESSION_FILE"),
			RedisAddr:   v.GetString("REDIS_ADDR"),
			RedisPass:   v.GetString("REDIS_PASSWORD"),
			RedisDB:     v.GetInt("REDIS_DB"),
			RedisPrefix: v.GetString("REDIS_PREFIX"),
		},
		Stub: StubConfig{
			Port:                 v.GetString("STUB_PORT"),
			Origin:               v.GetString("STUB_ORIGIN"),
			DBDriver:             v.GetString("STUB_DB_DRIVER"),
			DBDSN:                v.GetString("STUB_DB_DSN"),
			JWTSecret:            v.GetString("JWT_SECRET"),
			JWTExpirationMinutes: jwtExpMinutes,
			SlotDaysAhead:        v.GetInt("SLOT_DAYS_AHEAD"),
		},
	}, nil
}

// IsProduction reports whether the client runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".booking-session.json"
	}
	return filepath.Join(home, ".booking", "session.json")
}
