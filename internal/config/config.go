package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port     int
	MongoURI string
	DBName   string

	// JWTSecret signs login tokens. Empty disables token issuing.
	JWTSecret []byte
	TokenTTL  time.Duration

	Debug   bool
	LogMode string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first.
func Load() (*Config, error) {
	cfg := &Config{
		DBName:    getenv("DB_NAME", "storyweave"),
		JWTSecret: []byte(os.Getenv("JWTSECRET")),
		Debug:     os.Getenv("DEBUG") == "true",
		LogMode:   getenv("LOG_MODE", "development"),
	}

	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	cfg.MongoURI = os.Getenv("MONGO_URI")
	if cfg.MongoURI == "" {
		username := os.Getenv("DB_USERNAME")
		password := os.Getenv("DB_PASSWORD")
		connectionString := os.Getenv("DB_CONNECTION_STRING")
		if connectionString == "" {
			return nil, fmt.Errorf("either MONGO_URI or DB_CONNECTION_STRING must be set")
		}
		cfg.MongoURI = fmt.Sprintf("mongodb+srv://%s:%s%s", username, password, connectionString)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
