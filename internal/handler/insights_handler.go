package handler

import (
	"bytes"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/utils"
	"github.com/lernix/lernix-web/internal/view"
)

const insightsFallback = "Failed to load insights"

// InsightsPageConfig names the links rendered on the insights page.
type InsightsPageConfig struct {
	AppName    string
	PagePath   string
	LogoutPath string
}

// InsightsHandler serves the insights dashboard as JSON and as a rendered page.
type InsightsHandler struct {
	insights  service.InsightsService
	renderer  *view.Renderer
	guard     *middleware.SessionGuard
	validator *validator.Validate
	page      InsightsPageConfig
	logger    zerolog.Logger
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(insights service.InsightsService, renderer *view.Renderer, guard *middleware.SessionGuard, validate *validator.Validate, page InsightsPageConfig, logger zerolog.Logger) *InsightsHandler {
	if page.PagePath == "" {
		page.PagePath = "/insights"
	}
	return &InsightsHandler{
		insights:  insights,
		renderer:  renderer,
		guard:     guard,
		validator: validate,
		page:      page,
		logger:    logger.With().Str("component", "insights_handler").Logger(),
	}
}

// Register wires the JSON insights routes.
func (h *InsightsHandler) Register(router fiber.Router) {
	router.Get("/courses", h.courses)
	router.Get("/dashboard", h.dashboard)
	router.Post("/select", h.selectCourse)
	router.Get("/total-time", h.totalTime)
}

// RegisterPage wires the server rendered page at its configured path behind
// the given session middleware.
func (h *InsightsHandler) RegisterPage(router fiber.Router, requireSession fiber.Handler) {
	router.Get(h.page.PagePath, requireSession, h.renderPage)
}

func (h *InsightsHandler) courses(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courses, selected, err := h.insights.Courses(c.UserContext(), sessionID(c), client)
	if err != nil {
		return h.handleError(c, err, "Failed to load courses")
	}
	return utils.SendSuccess(c, "courses retrieved", view.CourseOptions(courses, selected))
}

func (h *InsightsHandler) dashboard(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	snapshot, courses, err := h.insights.Dashboard(c.UserContext(), sessionID(c), client)
	return h.sendDashboard(c, snapshot, courses, err)
}

func (h *InsightsHandler) selectCourse(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	var payload dto.SelectCourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err, insightsFallback)
	}

	snapshot, courses, err := h.insights.Select(c.UserContext(), sessionID(c), client, payload.CourseID)
	return h.sendDashboard(c, snapshot, courses, err)
}

// sendDashboard answers with the dashboard. A failed fetch for a known course
// still answers 200: the dashboard carries the error next to the course.
func (h *InsightsHandler) sendDashboard(c *fiber.Ctx, snapshot service.InsightsSnapshot, courses []models.Course, err error) error {
	if err != nil && (snapshot.Course == nil || !isInsightsFetchFailure(err)) {
		return h.handleError(c, err, insightsFallback)
	}
	return utils.SendSuccess(c, "insights retrieved", view.BuildDashboard(snapshot, courses))
}

func (h *InsightsHandler) totalTime(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	totals, err := h.insights.TotalTime(c.UserContext(), client)
	if err != nil {
		return h.handleError(c, err, "Failed to load total time")
	}
	return utils.SendSuccess(c, "total time retrieved", totals)
}

func (h *InsightsHandler) renderPage(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courseID, err := parseQueryInt(c, "course_id")
	if err != nil || courseID < 0 {
		courseID = 0
	}

	ctx := c.UserContext()
	id := sessionID(c)
	status := fiber.StatusOK

	var (
		snapshot service.InsightsSnapshot
		courses  []models.Course
	)
	if courseID > 0 {
		snapshot, courses, err = h.insights.Select(ctx, id, client, courseID)
	} else {
		snapshot, courses, err = h.insights.Dashboard(ctx, id, client)
	}

	pageError := ""
	switch {
	case err == nil:
	case errors.Is(err, backend.ErrUnauthorized):
		return h.guard.Reject(c)
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrSelectionSuperseded):
		if errors.Is(err, service.ErrCourseNotFound) {
			status = fiber.StatusNotFound
			pageError = "Course not found"
		}
		snapshot, courses, err = h.insights.Dashboard(ctx, id, client)
		if errors.Is(err, backend.ErrUnauthorized) {
			return h.guard.Reject(c)
		}
	}
	if err != nil && snapshot.Course == nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("insights page rendered without data")
		status = fiber.StatusBadGateway
		pageError = backend.Message(err, insightsFallback)
	}

	dashboard := view.BuildDashboard(snapshot, courses)
	if pageError != "" && dashboard.Error == "" {
		dashboard.Error = pageError
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderInsights(&buf, view.InsightsPage{
		AppName:    h.page.AppName,
		Dashboard:  dashboard,
		SelectPath: h.page.PagePath,
		LogoutPath: h.page.LogoutPath,
	}); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to render insights page")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to render page")
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (h *InsightsHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	return respondError(c, h.guard, h.logger, err, fallback)
}

// isInsightsFetchFailure reports whether err is a failed aggregate fetch that
// the snapshot already describes, rather than a reason to abandon the request.
func isInsightsFetchFailure(err error) bool {
	return !errors.Is(err, backend.ErrUnauthorized) &&
		!errors.Is(err, service.ErrSelectionSuperseded) &&
		!errors.Is(err, service.ErrCourseNotFound)
}

func sessionID(c *fiber.Ctx) string {
	if sess := middleware.SessionFromCtx(c); sess != nil {
		return sess.ID()
	}
	return ""
}
