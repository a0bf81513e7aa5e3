package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DATABASE_URL", "postgres://hr:hr@localhost:5432/hr")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "pub")
	t.Setenv("AUTH_PRIVATE_KEY_DATA", "priv")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres://hr:hr@localhost:5432/hr", cfg.Database.URL)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []byte("pub"), cfg.Auth.PublicKey)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DATABASE_URL", "")
	yaml := "database:\n  url: postgres://file\nlogger:\n  level: debug\naudit:\n  batch_size: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "pub")
	t.Setenv("AUTH_PRIVATE_KEY_DATA", "priv")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 7, cfg.Audit.BatchSize)
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "pub")
	t.Setenv("AUTH_PRIVATE_KEY_DATA", "priv")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LoggerConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
