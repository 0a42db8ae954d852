package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/session"
	"github.com/lernix/lernix-web/internal/utils"
)

const (
	sessionHeader = "X-Session-ID"
	localSession  = "session"
	localBackend  = "backend"
)

// SessionConfig configures a SessionGuard.
type SessionConfig struct {
	Manager    *session.Manager
	Backend    *backend.Client
	CookieName string
	LoginPath  string
	Secure     bool
	// OnInvalidated runs after a request whose session was torn down.
	OnInvalidated func(sessionID string)
	Logger        zerolog.Logger
}

// SessionGuard binds browser requests to a stored backend session.
type SessionGuard struct {
	cfg    SessionConfig
	logger zerolog.Logger
}

// NewSessionGuard constructs a guard.
func NewSessionGuard(cfg SessionConfig) *SessionGuard {
	if cfg.CookieName == "" {
		cfg.CookieName = "lernix_session"
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	return &SessionGuard{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "session_guard").Logger(),
	}
}

// LoginPath is where unauthenticated browsers are sent.
func (g *SessionGuard) LoginPath() string {
	return g.cfg.LoginPath
}

// Require loads the session named by the cookie or X-Session-ID header and
// stores it, plus a backend client bound to it, in the request locals.
func (g *SessionGuard) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := g.SessionID(c)
		if id == "" {
			return g.Reject(c)
		}

		sess, err := g.cfg.Manager.Load(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return g.Reject(c)
			}
			g.logger.Error().Err(err).Str("correlation_id", GetCorrelationID(c)).Msg("failed to load session")
			return utils.SendError(c, fiber.StatusServiceUnavailable, "session store unavailable")
		}

		c.Locals(localSession, sess)
		c.Locals(localBackend, g.cfg.Backend.WithSession(sess))

		err = c.Next()
		if sess.Invalidated() {
			g.ClearCookie(c)
			if g.cfg.OnInvalidated != nil {
				g.cfg.OnInvalidated(sess.ID())
			}
		}
		return err
	}
}

// SessionID returns the identifier presented by the browser, if any.
func (g *SessionGuard) SessionID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Cookies(g.cfg.CookieName)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Get(sessionHeader))
}

// Reject ends the request as unauthenticated. Page navigations are redirected
// to the login page; API calls get a 401 envelope naming the redirect target.
func (g *SessionGuard) Reject(c *fiber.Ctx) error {
	g.ClearCookie(c)
	if wantsHTML(c) {
		return c.Redirect(g.cfg.LoginPath, fiber.StatusSeeOther)
	}
	return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", fiber.Map{
		"redirect": g.cfg.LoginPath,
	})
}

// IssueCookie hands the session identifier to the browser.
func (g *SessionGuard) IssueCookie(c *fiber.Ctx, sess models.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		Secure:   g.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (g *SessionGuard) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   g.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionFromCtx returns the session loaded by Require.
func SessionFromCtx(c *fiber.Ctx) *session.Context {
	sess, _ := c.Locals(localSession).(*session.Context)
	return sess
}

// BackendFromCtx returns the backend client bound to the request session.
func BackendFromCtx(c *fiber.Ctx) *backend.Client {
	client, _ := c.Locals(localBackend).(*backend.Client)
	return client
}

func wantsHTML(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet {
		return false
	}
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML
}
