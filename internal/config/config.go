package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity-provider connection settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// KafkaConfig enables the external event publisher when brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SessionConfig controls the gate's session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
}

// AdminConfig holds the bootstrap admin identity used by setup-admin and
// the teacher account repaired by update-teacher.
type AdminConfig struct {
	Email         string
	Password      string
	FullName      string
	TeacherEmail  string
	TeacherName   string
}

type Config struct {
	Port        string
	BaseURL     string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	Casdoor CasdoorConfig
	Kafka   KafkaConfig
	Session SessionConfig
	Admin   AdminConfig
}

// LoadConfig reads configuration from the environment, loading .env first
// when present. Credentials have no built-in fallbacks.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "faradaycoins.events"),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE", "faraday_session"),
			Secure:     getEnv("ENVIRONMENT", "development") == "production",
		},
		Admin: AdminConfig{
			Email:        os.Getenv("ADMIN_EMAIL"),
			Password:     os.Getenv("ADMIN_PASSWORD"),
			FullName:     getEnv("ADMIN_FULL_NAME", "System Administrator"),
			TeacherEmail: os.Getenv("TEACHER_EMAIL"),
			TeacherName:  os.Getenv("TEACHER_FULL_NAME"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Casdoor.Endpoint == "" || cfg.Casdoor.ClientID == "" || cfg.Casdoor.ClientSecret == "" {
		return nil, fmt.Errorf("CASDOOR_ENDPOINT, CASDOOR_CLIENT_ID and CASDOOR_CLIENT_SECRET are required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
