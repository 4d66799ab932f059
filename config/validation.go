package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the server cannot run without is set.
func ValidateConfig(cfg *Config) error {
	var errors []string

	required := map[string]string{
		"DB_HOST":     cfg.DBHost,
		"DB_USER":     cfg.DBUser,
		"DB_PASSWORD": cfg.DBPassword,
		"DB_NAME":     cfg.DBName,
		"REDIS_HOST":  cfg.RedisHost,
		"JWT_SECRET":  cfg.JWTSecret,
	}
	for name, value := range required {
		if value == "" {
			errors = append(errors, fmt.Sprintf("required configuration %s is not set", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
