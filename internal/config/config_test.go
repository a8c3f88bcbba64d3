package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-car-rental/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := config.Load(config.NewViper(""))
	require.NoError(t, err)

	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, config.DefaultBaseURL, cfg.GetBaseURL())
	require.Equal(t, 15*time.Second, cfg.GetTimeout())
	require.Equal(t, config.DefaultPublicViews, cfg.GetPublicViews())
	require.Equal(t, config.BackendFile, cfg.GetStoreBackend())
	require.Equal(t, "credentials.json", filepath.Base(cfg.GetStorePath()))
	require.Equal(t, "carrental:", cfg.GetRedisKeyPrefix())
	require.False(t, cfg.GetPasswordStrength())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CARRENTAL_API_BASE_URL", "https://rentals.example.com/api/v1")
	t.Setenv("CARRENTAL_API_TIMEOUT", "3s")
	t.Setenv("CARRENTAL_STORE_BACKEND", "redis")
	t.Setenv("CARRENTAL_REDIS_ADDR", "localhost:6379")
	t.Setenv("CARRENTAL_AUTH_PASSWORD_STRENGTH", "true")

	cfg, err := config.Load(config.NewViper(""))
	require.NoError(t, err)
	require.Equal(t, "https://rentals.example.com/api/v1", cfg.GetBaseURL())
	require.Equal(t, 3*time.Second, cfg.GetTimeout())
	require.Equal(t, config.BackendRedis, cfg.GetStoreBackend())
	require.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	require.True(t, cfg.GetPasswordStrength())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "carrental.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
env: production
api:
  base_url: https://api.example.com/api/v1
store:
  backend: memory
`), 0o600))

	cfg, err := config.Load(config.NewViper(file))
	require.NoError(t, err)
	require.Equal(t, "production", cfg.GetEnv())
	require.Equal(t, "https://api.example.com/api/v1", cfg.GetBaseURL())
	require.Equal(t, config.BackendMemory, cfg.GetStoreBackend())
}

func TestValidate(t *testing.T) {
	valid := func() *config.Settings {
		return &config.Settings{
			API:   config.API{BaseURL: "http://localhost:8000/api/v1"},
			Store: config.Store{Backend: config.BackendMemory},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("bad backend", func(t *testing.T) {
		s := valid()
		s.Store.Backend = "sqlite"
		err := s.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be one of")
	})

	t.Run("bad url", func(t *testing.T) {
		s := valid()
		s.API.BaseURL = "not a url"
		err := s.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "valid URL")
	})

	t.Run("redis without addr", func(t *testing.T) {
		s := valid()
		s.Store.Backend = config.BackendRedis
		err := s.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "redis.addr")
	})

	t.Run("file without path", func(t *testing.T) {
		s := valid()
		s.Store.Backend = config.BackendFile
		require.Error(t, s.Validate())
	})
}
