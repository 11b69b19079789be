package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/jwt_auth/pkg/config"
	"github.com/Skotchmaster/jwt_auth/pkg/tokens"
)

type Config struct {
	ServiceName      string
	ServerPort       string
	DatabaseURL      string
	JWTSecret        []byte
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTLMonths int
	LoginPath        string
	PurgeLocation    *time.Location
	KafkaBrokers     []string
	KafkaTopic       string
	LogLevel         string
	SeedDefaults     bool
}

// Load reads .env when present and then the process environment.
// Values already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	locName := config.EnvDefault("PURGE_LOCATION", "UTC")
	loc, err := time.LoadLocation(locName)
	if err != nil {
		return nil, fmt.Errorf("PURGE_LOCATION %q: %w", locName, err)
	}

	cfg := &Config{
		ServiceName:      config.EnvDefault("SERVICE_NAME", "jwt_auth"),
		ServerPort:       config.EnvDefault("SERVER_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:        config.EnvDefault("JWT_ISSUER", tokens.DefaultIssuer),
		AccessTTL:        config.EnvDurationDefault("JWT_ACCESS_TTL", 5*time.Hour),
		RefreshTTLMonths: config.EnvIntDefault("REFRESH_TTL_MONTHS", 6),
		LoginPath:        config.EnvDefault("LOGIN_PATH", "/login"),
		PurgeLocation:    loc,
		KafkaBrokers:     config.CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       config.EnvDefault("KAFKA_TOPIC", "auth_events"),
		LogLevel:         config.EnvDefault("LOG_LEVEL", "info"),
		SeedDefaults:     config.EnvBoolDefault("SEED_DEFAULTS", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := config.RequireNonEmpty(map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"JWT_SECRET":   string(c.JWTSecret),
	}); err != nil {
		return err
	}
	if c.RefreshTTLMonths <= 0 {
		return fmt.Errorf("REFRESH_TTL_MONTHS must be positive, got %d", c.RefreshTTLMonths)
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		return fmt.Errorf("LOGIN_PATH must start with /, got %q", c.LoginPath)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.ServerPort, ":")
}
