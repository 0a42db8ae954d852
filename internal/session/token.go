package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lernix/lernix-web/internal/models"
)

// FromToken builds a new session for a freshly issued bearer token. The token
// is opaque to this service; when it happens to be a JWT its expiry, subject
// and id claims are used, otherwise the fallback TTL applies.
func FromToken(token string, fallbackTTL time.Duration, now time.Time) models.Session {
	session := models.Session{
		ID:        uuid.NewString(),
		Token:     strings.TrimSpace(token),
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(fallbackTTL),
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.Token, claims); err != nil {
		return session
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time.UTC()
	}
	if subject, err := claims.GetSubject(); err == nil {
		session.Username = subject
	}
	if id, ok := claims["id"].(float64); ok && id > 0 {
		session.UserID = int(id)
	}

	return session
}
