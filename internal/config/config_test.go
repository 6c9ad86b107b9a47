package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Setenv(DatabaseURLEnv, "postgres://localhost/forge")
	t.Setenv(LLMBaseURLEnv, "https://llm.example.com")
	t.Setenv(LLMAPIKeyEnv, "sk-abc")
	t.Setenv(LLMModelEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/forge", cfg.Database.URL)
	assert.Equal(t, "https://llm.example.com", cfg.LLM.BaseURL)
	assert.Equal(t, "sk-abc", cfg.LLM.APIKey)
	assert.NotEmpty(t, cfg.LLM.Model)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv(ConfigPathEnv, "")
	t.Setenv(DatabaseURLEnv, "")
	t.Setenv(LLMBaseURLEnv, "https://llm.example.com")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  shutdown_timeout: 10s
database:
  url: postgres://file/db
llm:
  base_url: https://file.example.com
  model: gpt-4.1-mini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(ConfigPathEnv, path)
	t.Setenv(DatabaseURLEnv, "postgres://env/db") // env wins
	t.Setenv(LLMBaseURLEnv, "")
	t.Setenv(LLMAPIKeyEnv, "")
	t.Setenv(LLMModelEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, "https://file.example.com", cfg.LLM.BaseURL)
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewJWTConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.ExpirationHours)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewJWTConfig()
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("PASSWORD_PEPPER", "")

	cfg, err := NewPasswordConfig()
	require.NoError(t, err)

	hash, err := cfg.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, cfg.VerifyPassword("correct horse battery", hash))
	assert.False(t, cfg.VerifyPassword("wrong", hash))
}

func TestPasswordCostOutOfRange(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	_, err := NewPasswordConfig()
	assert.Error(t, err)
}
