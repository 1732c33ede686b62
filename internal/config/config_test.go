package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "MONGO_URI", "DB_NAME", "DB_USERNAME", "DB_PASSWORD", "DB_CONNECTION_STRING", "JWTSECRET", "TOKEN_TTL", "DEBUG", "LOG_MODE"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "storyweave", cfg.DBName)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadBuildsAtlasURI(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USERNAME", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_CONNECTION_STRING", "@cluster0.example.net/?retryWrites=true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb+srv://u:p@cluster0.example.net/?retryWrites=true", cfg.MongoURI)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "forever")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRequiresDatabase(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.Error(t, err)
}
