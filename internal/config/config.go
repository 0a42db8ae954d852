package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the web service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	BackendURL     string
	BackendTimeout time.Duration
	RedisURL       string
	SessionTTL     time.Duration
	SessionCookie  string
	LoginPath      string
	UploadMaxMB    int
	CORSOrigins    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LERNIX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Lernix Web")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("session.ttl", "20m")
	v.SetDefault("session.cookie", "lernix_session")
	v.SetDefault("login.path", "/login")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("cors.origins", "*")

	timeout, err := parseDuration(v.GetString("backend.timeout"), 15*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid backend timeout: %w", err)
	}

	ttl, err := parseDuration(v.GetString("session.ttl"), 20*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		BackendURL:     strings.TrimRight(strings.TrimSpace(v.GetString("backend.url")), "/"),
		BackendTimeout: timeout,
		RedisURL:       v.GetString("redis.url"),
		SessionTTL:     ttl,
		SessionCookie:  v.GetString("session.cookie"),
		LoginPath:      v.GetString("login.path"),
		UploadMaxMB:    v.GetInt("upload.max_mb"),
		CORSOrigins:    v.GetString("cors.origins"),
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("backend url must be provided")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	if !strings.HasPrefix(cfg.LoginPath, "/") {
		cfg.LoginPath = "/" + cfg.LoginPath
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}
