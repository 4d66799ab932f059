package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Emails allowed to manage feedback through the admin endpoints
	AdminEmails []string
}

// LoadConfig creates a new Config instance with values from environment
// variables or Docker secrets, depending on the environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadEnvConfig(cfg)
	case Development, Test:
		loadEnvConfig(cfg)
		applySecretOverrides(cfg)
	case Production:
		if err := loadSecretConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig loads configuration from plain environment variables.
func loadEnvConfig(cfg *Config) {
	cfg.ServerPort = getEnvDefault("SERVER_PORT", "8080")
	cfg.ServerHost = getEnvDefault("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvDefault("DB_PORT", "5432")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnvDefault("DB_SSL_MODE", "disable")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnvDefault("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.AdminEmails = splitList(os.Getenv("ADMIN_EMAILS"))
}

// applySecretOverrides lets Docker secrets win over plain env vars when both
// are present, so local compose setups behave like production.
func applySecretOverrides(cfg *Config) {
	if v := readSecret("db_user"); v != "" {
		cfg.DBUser = v
	}
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("admin_emails"); v != "" {
		cfg.AdminEmails = splitList(v)
	}
}

// loadSecretConfig loads configuration for production using ONLY Docker secrets
func loadSecretConfig(cfg *Config) error {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisDB = 0
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisURL = readSecret("redis_url")
	cfg.AdminEmails = splitList(readSecret("admin_emails"))

	return nil
}

// splitList parses a comma-separated value into trimmed, non-empty entries.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
