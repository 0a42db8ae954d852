package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/session"
	"github.com/lernix/lernix-web/internal/utils"
)

// AuthHandler exchanges credentials for a browser session.
type AuthHandler struct {
	client    *backend.Client
	sessions  *session.Manager
	guard     *middleware.SessionGuard
	insights  service.InsightsService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler constructs an auth handler. client must not be bound to a session.
func NewAuthHandler(client *backend.Client, sessions *session.Manager, guard *middleware.SessionGuard, insights service.InsightsService, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		client:    client,
		sessions:  sessions,
		guard:     guard,
		insights:  insights,
		validator: validate,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/login", h.login)
	router.Post("/register", h.register)
	router.Post("/logout", h.logout)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.guard, h.logger, err, "Login failed")
	}

	token, err := h.client.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.guard, h.logger, err, "Login failed")
	}

	sess, err := h.sessions.Create(c.UserContext(), token.AccessToken)
	if err != nil {
		if errors.Is(err, session.ErrExpired) {
			return utils.SendError(c, fiber.StatusBadGateway, "backend issued an expired token")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create session")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to start session")
	}

	stored := sess.Session()
	h.guard.IssueCookie(c, stored)
	requestLogger(h.logger, c).Info().Str("session_id", stored.ID).Str("username", stored.Username).Msg("session started")

	return utils.SendSuccess(c, "login successful", dto.SessionResponse{
		SessionID: stored.ID,
		Username:  stored.Username,
		UserID:    stored.UserID,
		ExpiresAt: stored.ExpiresAt,
	})
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.guard, h.logger, err, "Registration failed")
	}

	if err := h.client.Register(c.UserContext(), payload); err != nil {
		return respondError(c, h.guard, h.logger, err, "Registration failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", nil)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if id := h.guard.SessionID(c); id != "" {
		if sess, err := h.sessions.Load(c.UserContext(), id); err == nil {
			if err := sess.Invalidate(c.UserContext()); err != nil {
				requestLogger(h.logger, c).Warn().Err(err).Msg("failed to invalidate session on logout")
			}
		}
		h.insights.Forget(id)
	}
	h.guard.ClearCookie(c)

	if acceptsHTML(c) {
		return c.Redirect(h.guard.LoginPath(), fiber.StatusSeeOther)
	}
	return utils.SendSuccess(c, "logged out", fiber.Map{"redirect": h.guard.LoginPath()})
}
