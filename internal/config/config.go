// Package config loads the settings shared by the serve and shell commands
// from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every setting of the etalase binary.
type Config struct {
	// Client side.
	APIBaseURL string        `mapstructure:"API_BASE_URL" validate:"required,url"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT" validate:"gt=0"`
	PrefsPath  string        `mapstructure:"PREFS_PATH" validate:"required"`

	// Logging.
	// LogLevel empty means the default level of the running command.
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	// Development inventory API.
	AppPort      string `mapstructure:"APP_PORT" validate:"required"`
	DatabaseDSN  string `mapstructure:"DATABASE_DSN" validate:"required"`
	JWTSecret    string `mapstructure:"JWT_SECRET" validate:"required"`
	SecureCookie bool   `mapstructure:"SECURE_COOKIE"`
	RabbitMQURL  string `mapstructure:"RABBITMQ_URL"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	RedisDB      int    `mapstructure:"REDIS_DB" validate:"gte=0"`
}

// keys lists every setting so AutomaticEnv picks them up during Unmarshal.
var keys = []string{
	"API_BASE_URL", "API_TIMEOUT", "PREFS_PATH",
	"LOG_LEVEL", "LOG_PRETTY",
	"APP_PORT", "DATABASE_DSN", "JWT_SECRET", "SECURE_COOKIE",
	"RABBITMQ_URL", "REDIS_ADDR", "REDIS_DB",
}

// New returns a viper instance with defaults set and environment lookup
// enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_TIMEOUT", 10*time.Second)
	v.SetDefault("PREFS_PATH", defaultPrefsPath())
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DSN", "file:etalase.db?cache=shared")
	v.SetDefault("JWT_SECRET", "etalase_dev_secret")
	v.SetDefault("SECURE_COOKIE", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.AutomaticEnv()
	return v
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".etalase", "prefs.yaml")
	}
	return filepath.Join(home, ".etalase", "prefs.yaml")
}
