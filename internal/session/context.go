package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/models"
)

// Context is the session handed to the backend client for one request. It
// owns the bearer token and is the only thing allowed to tear the session down.
type Context struct {
	store       Store
	logger      zerolog.Logger
	mu          sync.Mutex
	session     models.Session
	invalidated bool
}

// NewContext wraps a loaded session.
func NewContext(store Store, session models.Session, logger zerolog.Logger) *Context {
	return &Context{
		store:   store,
		session: session,
		logger:  logger,
	}
}

// ID returns the session identifier.
func (c *Context) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ID
}

// Session returns a copy of the underlying session.
func (c *Context) Session() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Token returns the bearer token, or "" once the session was invalidated.
func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidated {
		return ""
	}
	return c.session.Token
}

// Invalidated reports whether Invalidate was called.
func (c *Context) Invalidated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

// Invalidate clears the stored session. Safe to call more than once.
func (c *Context) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	if c.invalidated {
		c.mu.Unlock()
		return nil
	}
	c.invalidated = true
	id := c.session.ID
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Warn().Err(err).Str("session_id", id).Msg("failed to delete invalidated session")
		return err
	}
	c.logger.Info().Str("session_id", id).Msg("session invalidated")
	return nil
}

// Manager creates and loads sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewManager builds a session manager. ttl applies to tokens without an exp claim.
func NewManager(store Store, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &Manager{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "session_manager").Logger(),
	}
}

// Create stores a new session for the given token.
func (m *Manager) Create(ctx context.Context, token string) (*Context, error) {
	session := FromToken(token, m.ttl, m.now())
	if err := m.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return NewContext(m.store, session, m.logger), nil
}

// Load returns the session for id, or ErrNotFound when missing or expired.
func (m *Manager) Load(ctx context.Context, id string) (*Context, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return NewContext(m.store, session, m.logger), nil
}
