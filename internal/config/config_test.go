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
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.StageTimeout)
	assert.Equal(t, 3, cfg.Pipeline.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.PollInterval)
	assert.True(t, cfg.Server.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("PIPELINE_STAGE_TIMEOUT", "45s")
	t.Setenv("SERVER_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.StageTimeout)
	assert.False(t, cfg.Server.IsDevelopment())
}

func TestReadSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groq")
	require.NoError(t, os.WriteFile(path, []byte("gsk-secret\n"), 0o600))

	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_API_KEY_FILE", path)

	readSecret("GROQ_API_KEY")
	assert.Equal(t, "gsk-secret", os.Getenv("GROQ_API_KEY"))
}

func TestReadSecretKeepsDirectValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt")
	require.NoError(t, os.WriteFile(path, []byte("from-file"), 0o600))

	t.Setenv("JWT_SECRET", "direct")
	t.Setenv("JWT_SECRET_FILE", path)

	readSecret("JWT_SECRET")
	assert.Equal(t, "direct", os.Getenv("JWT_SECRET"))
}
