// Package config loads the service configuration from the environment.
//
// Values are read from a .env file (when present) and the process environment.
// The task vocabulary is either a built-in preset (VOCABULARY) or a YAML file (VOCABULARY_FILE).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the complete service configuration.
type Config struct {
	Port           string
	LogLevel       logrus.Level
	Database       DatabaseConfig
	Auth           AuthConfig
	RateLimit      float64
	RateBurst      int
	RequestTimeout time.Duration
	Vocabulary     Vocabulary
}

// DatabaseConfig selects and configures the SQL backend.
// Driver is either "mysql" or "sqlite"; Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string
	Username string
	Password string
	Address  string
	Port     int
	Name     string
	Path     string
	Debug    bool
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
}

// LoadEnvFiles loads the given .env files into the process environment.
// Missing files are not an error.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from the process environment, applying defaults.
func FromEnv() (*Config, error) {
	var errs []error
	cfg := &Config{
		Port: getEnv("PORT", "5000"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Address:  getEnv("DB_ADDRESS", "127.0.0.1"),
			Name:     getEnv("DB_NAME", "taskdb"),
			Path:     getEnv("DB_PATH", "tasks.db"),
			Debug:    os.Getenv("DB_DEBUG") == "true",
		},
		Auth: AuthConfig{
			SecretKey: os.Getenv("SECRET_KEY"),
		},
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	cfg.Database.Port, err = strconv.Atoi(getEnv("DB_PORT", "3306"))
	if err != nil {
		errs = append(errs, fmt.Errorf("DB_PORT: %w", err))
	}
	cfg.Auth.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	cfg.Auth.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		errs = append(errs, fmt.Errorf("BCRYPT_COST: %w", err))
	}
	cfg.RateLimit, err = strconv.ParseFloat(getEnv("RATE_LIMIT", "2"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT: %w", err))
	}
	cfg.RateBurst, err = strconv.Atoi(getEnv("RATE_BURST", "20"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RATE_BURST: %w", err))
	}
	cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "5s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
	}

	if path := os.Getenv("VOCABULARY_FILE"); path != "" {
		cfg.Vocabulary, err = LoadVocabulary(path)
		if err != nil {
			errs = append(errs, err)
		}
	} else {
		name := getEnv("VOCABULARY", "classic")
		v, ok := Presets()[name]
		if !ok {
			errs = append(errs, fmt.Errorf("VOCABULARY: unknown preset %q", name))
		}
		cfg.Vocabulary = v
	}

	if cfg.Database.Driver != "mysql" && cfg.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.Database.Driver))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireSecret fails when no token signing key is configured.
func (c *Config) RequireSecret() error {
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return errors.New("SECRET_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
