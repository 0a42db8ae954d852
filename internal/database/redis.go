package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 3 * time.Second

// ErrRedisURLMissing is returned when no session store address is configured.
var ErrRedisURLMissing = errors.New("redis url must not be empty")

// ConnectRedis opens the session store client described by url and checks
// that the server answers before returning it.
func ConnectRedis(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	if url == "" {
		return nil, ErrRedisURLMissing
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", options.Addr, err)
	}

	logger.Info().Str("addr", options.Addr).Int("db", options.DB).Msg("session store connected")
	return client, nil
}
