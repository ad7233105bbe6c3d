package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "offline", cfg.Assistant.Provider)
	assert.Equal(t, "standard", cfg.Scheme.Name)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("ASSISTANT_PROVIDER", "openai")
	t.Setenv("ASSISTANT_API_KEY", "sk-test")
	t.Setenv("ASSISTANT_TIMEOUT", "15s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "cache:6379", cfg.Session.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.Assistant.Timeout)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:7070\nGRADE_SCHEME=base50\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":6060")
	t.Setenv("GRADE_SCHEME", "")
	os.Unsetenv("GRADE_SCHEME")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Addr)
	assert.Equal(t, "base50", cfg.Scheme.Name)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown provider":   {"ASSISTANT_PROVIDER": "llama"},
		"provider needs key": {"ASSISTANT_PROVIDER": "gemini"},
		"unknown backend":    {"SESSION_BACKEND": "disk"},
		"bad log level":      {"LOG_LEVEL": "loud"},
		"bad base url":       {"ASSISTANT_BASE_URL": "not a url"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
