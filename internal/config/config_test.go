package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	v.Set("backend.url", "http://backend.local/")
	v.Set("redis.url", "redis://localhost:6379/0")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, "Lernix Web", cfg.AppName)
	require.Equal(t, "http://backend.local", cfg.BackendURL)
	require.Equal(t, 15*time.Second, cfg.BackendTimeout)
	require.Equal(t, 20*time.Minute, cfg.SessionTTL)
	require.Equal(t, "lernix_session", cfg.SessionCookie)
	require.Equal(t, "/login", cfg.LoginPath)
	require.Equal(t, 10, cfg.UploadMaxMB)
	require.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestFromViperRequiresBackendAndRedis(t *testing.T) {
	v := viper.New()
	_, err := fromViper(v)
	require.Error(t, err)

	v.Set("backend.url", "http://backend.local")
	_, err = fromViper(v)
	require.Error(t, err)
}

func TestFromViperRejectsBadDurations(t *testing.T) {
	v := viper.New()
	v.Set("backend.url", "http://backend.local")
	v.Set("redis.url", "redis://localhost:6379/0")
	v.Set("session.ttl", "soon")

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestFromViperNormalisesValues(t *testing.T) {
	v := viper.New()
	v.Set("backend.url", "http://backend.local")
	v.Set("redis.url", "redis://localhost:6379/0")
	v.Set("login.path", "signin")
	v.Set("upload.max_mb", -3)
	v.Set("app.port", ":9090")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	require.Equal(t, "/signin", cfg.LoginPath)
	require.Equal(t, 10, cfg.UploadMaxMB)
	require.Equal(t, ":9090", cfg.HTTPAddress())
}
