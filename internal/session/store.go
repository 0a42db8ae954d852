package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/models"
)

var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session not found")
	// ErrExpired indicates a session was saved with an expiry in the past.
	ErrExpired = errors.New("session already expired")
)

// Store persists sessions between requests.
type Store interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in redis, expiring together with the token.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger zerolog.Logger
}

// NewRedisStore builds a redis backed session store.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "lernix:session:",
		now:    time.Now,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save stores the session until its expiry.
func (s *RedisStore) Save(ctx context.Context, session models.Session) error {
	if session.ID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrExpired
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	return nil
}

// Get loads a session by id.
func (s *RedisStore) Get(ctx context.Context, id string) (models.Session, error) {
	if id == "" {
		return models.Session{}, ErrNotFound
	}

	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("discarding unreadable session")
		_ = s.client.Del(ctx, s.key(id)).Err()
		return models.Session{}, ErrNotFound
	}

	return session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
