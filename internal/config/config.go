// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lifedash/backend/internal/calendar"
)

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the lib/pq key=value connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type Config struct {
	Port           string
	Database       Database
	JWTSecret      []byte
	Timezone       string
	Calendar       calendar.Calendar
	AllowedOrigins []string

	AnthropicAPIKey string
	AnthropicModel  string
	MockInsights    bool

	StreakSweepInterval time.Duration
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] ignoring .env: %v", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "lifedash"),
			Password: getEnv("DB_PASSWORD", "lifedash"),
			Name:     getEnv("DB_NAME", "lifedash"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		MockInsights:    os.Getenv("MOCK_INSIGHTS") == "true",
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("[config] JWT_SECRET not set, using development secret")
		secret = "lifedash-dev-signing-key"
	}
	cfg.JWTSecret = []byte(secret)

	cal, err := calendar.Load(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Calendar = cal

	cfg.StreakSweepInterval = time.Hour
	if v := os.Getenv("STREAK_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid STREAK_SWEEP_INTERVAL %q", v)
		}
		cfg.StreakSweepInterval = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
