package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the process needs from the environment.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string
	TokenTTL    time.Duration
	RefreshTTL  time.Duration
	LogLevel    string
}

// Load reads configuration from environment variables with sane local
// defaults. DATABASE_URL has no default on purpose: the caller decides
// whether to fall back to in-memory repositories.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("JWT_SECRET", "super-secret-key")
	v.SetDefault("TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TTL", "720h")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := Config{
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		RefreshTTL:  v.GetDuration("REFRESH_TTL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
	return cfg, nil
}
