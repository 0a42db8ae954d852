package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/utils"
)

var errInvalidParam = errors.New("invalid path parameter")

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(c.Params(key)))
	if err != nil || parsed <= 0 {
		return 0, errInvalidParam
	}
	return parsed, nil
}

// parseIDParams reads the named identifiers in order, failing on the first bad one.
func parseIDParams(c *fiber.Ctx, keys ...string) ([]int, error) {
	ids := make([]int, 0, len(keys))
	for _, key := range keys {
		id, err := parseIDParam(c, key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func validationFields(err error) []fieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make([]fieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return fields
}

// sessionBackend returns the backend client bound to the request session.
func sessionBackend(c *fiber.Ctx, guard *middleware.SessionGuard) (*backend.Client, error) {
	client := middleware.BackendFromCtx(c)
	if client == nil {
		return nil, guard.Reject(c)
	}
	return client, nil
}

// respondError maps service and backend failures onto HTTP responses. fallback
// is the user facing message when the failure carries none of its own.
func respondError(c *fiber.Ctx, guard *middleware.SessionGuard, logger zerolog.Logger, err error, fallback string) error {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return guard.Reject(c)
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", fiber.Map{
			"fields": validationFields(err),
		})
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, errInvalidParam):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrUploadMissing):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrUnansweredQuestions):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrSelectionSuperseded):
		return utils.SendError(c, fiber.StatusConflict, "a newer course selection is in progress")
	}

	if status := backend.Status(err); status >= fiber.StatusBadRequest {
		if status >= fiber.StatusInternalServerError {
			requestLogger(logger, c).Warn().Err(err).Msg(fallback)
		}
		return utils.SendError(c, status, backend.Message(err, fallback))
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}

func acceptsHTML(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML
}
