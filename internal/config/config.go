// Package config loads process configuration from the environment.
// Entry points load a .env file first (via godotenv) and then call Load;
// nothing in here reads ambient state after construction.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config carries everything the binaries need, injected explicitly into the
// components that use it.
type Config struct {
	// Telegram
	TelegramToken string

	// MongoDB
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Gemini
	GeminiModel string

	// HTTP
	Port string

	// Dashboard link included in bot replies (optional).
	DashboardURL string

	// Backend selection: "mongo" or "memory".
	DataBackend string
}

// Load reads configuration from the environment with defaults.
func Load(getenv func(string) string) *Config {
	return &Config{
		TelegramToken:   getenv("TELEGRAM_TOKEN"),
		MongoURI:        getenv("MONGO_URI"),
		MongoDatabase:   envOr(getenv, "MONGO_DATABASE", "expense_tracker"),
		MongoCollection: envOr(getenv, "MONGO_COLLECTION", "expenses"),
		GeminiModel:     envOr(getenv, "GEMINI_MODEL", "gemini-2.5-flash"),
		Port:            envOr(getenv, "PORT", "8080"),
		DashboardURL:    getenv("DASHBOARD_URL"),
		DataBackend:     envOr(getenv, "DATA_BACKEND", "mongo"),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "mongo":
		if c.MongoURI == "" {
			problems = append(problems, "MONGO_URI is required when DATA_BACKEND is mongo")
		}
	case "memory":
		// Nothing to check; memory backend has no settings.
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be mongo or memory", c.DataBackend))
	}

	if c.GeminiModel == "" {
		problems = append(problems, "GEMINI_MODEL cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func envOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}
