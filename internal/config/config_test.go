package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	require.Equal(t, "data/picvault.db", cfg.Database.Path)
	require.Equal(t, 720, cfg.Auth.TokenTTLMinutes)
	require.Equal(t, "images", cfg.Storage.KeyPrefix)
	require.Equal(t, "us-east-1", cfg.Storage.Region)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PICVAULT_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("PICVAULT_AUTH_JWTSECRET", "hunter2")
	t.Setenv("PICVAULT_STORAGE_BUCKET", "my-bucket")
	t.Setenv("PICVAULT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, "hunter2", cfg.Auth.JWTSecret)
	require.Equal(t, "my-bucket", cfg.Storage.Bucket)
	require.Equal(t, "debug", cfg.Log.Level)
}
