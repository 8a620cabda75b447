package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	RedisURL    string
	JWTSecret   string
	JWTExpiry   time.Duration
	LogLevel    string

	APIBaseURL     string
	ClientID       string
	ClientSecret   string
	TokenPath      string
	RequestTimeout time.Duration
	MaxAttempts    int
	RenewMargin    time.Duration

	ContextCacheTTL     time.Duration
	SyncInterval        time.Duration
	SyncTypeConcurrency int
}

var defaults = map[string]string{
	"SERVER_PORT":           "8080",
	"JWT_EXPIRY":            "24h",
	"LOG_LEVEL":             "info",
	"IEC_TOKEN_PATH":        "/token",
	"IEC_REQUEST_TIMEOUT":   "10s",
	"IEC_MAX_ATTEMPTS":      "3",
	"TOKEN_RENEW_MARGIN":    "60s",
	"CONTEXT_CACHE_TTL":     "5m",
	"SYNC_INTERVAL":         "0s",
	"SYNC_TYPE_CONCURRENCY": "1",
}

// Load reads settings from the environment without checking required fields.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		ServerPort:   v.GetString("SERVER_PORT"),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		RedisURL:     v.GetString("REDIS_URL"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		APIBaseURL:   strings.TrimRight(v.GetString("IEC_API_BASE_URL"), "/"),
		ClientID:     v.GetString("IEC_CLIENT_ID"),
		ClientSecret: v.GetString("IEC_CLIENT_SECRET"),
		TokenPath:    v.GetString("IEC_TOKEN_PATH"),
	}

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_EXPIRY", &cfg.JWTExpiry},
		{"IEC_REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"TOKEN_RENEW_MARGIN", &cfg.RenewMargin},
		{"CONTEXT_CACHE_TTL", &cfg.ContextCacheTTL},
		{"SYNC_INTERVAL", &cfg.SyncInterval},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(v.GetString(d.key)); err != nil || *d.dst < 0 {
			return nil, fmt.Errorf("invalid %s format", d.key)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"IEC_MAX_ATTEMPTS", &cfg.MaxAttempts},
		{"SYNC_TYPE_CONCURRENCY", &cfg.SyncTypeConcurrency},
	}
	for _, i := range ints {
		if *i.dst, err = strconv.Atoi(v.GetString(i.key)); err != nil || *i.dst < 1 {
			return nil, fmt.Errorf("invalid %s format", i.key)
		}
	}

	return cfg, nil
}

// LoadConfig loads and validates the full service configuration.
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	// Validate required fields
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.APIBaseURL == "" {
		return errors.New("IEC_API_BASE_URL is required")
	}
	if c.ClientID == "" {
		return errors.New("IEC_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return errors.New("IEC_CLIENT_SECRET is required")
	}
	return nil
}

// TokenURL is the client-credential endpoint. An absolute IEC_TOKEN_PATH is used as is.
func (c *Config) TokenURL() string {
	if strings.HasPrefix(c.TokenPath, "http://") || strings.HasPrefix(c.TokenPath, "https://") {
		return c.TokenPath
	}
	return c.APIBaseURL + "/" + strings.TrimLeft(c.TokenPath, "/")
}
