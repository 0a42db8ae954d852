package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/utils"
)

// CourseHandler serves course and chapter management.
type CourseHandler struct {
	courses  service.CourseService
	chapters service.ChapterService
	guard    *middleware.SessionGuard
	logger   zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses service.CourseService, chapters service.ChapterService, guard *middleware.SessionGuard, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:  courses,
		chapters: chapters,
		guard:    guard,
		logger:   logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes. router must already require a session.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.listCourses)
	router.Post("", h.createCourse)
	router.Put("/:courseId", h.updateCourse)
	router.Delete("/:courseId", h.deleteCourse)

	router.Get("/:courseId/chapters", h.listChapters)
	router.Post("/:courseId/chapters", h.createChapter)
	router.Get("/:courseId/chapters/:chapterId", h.getChapter)
	router.Put("/:courseId/chapters/:chapterId", h.updateChapter)
	router.Delete("/:courseId/chapters/:chapterId", h.deleteChapter)
}

func (h *CourseHandler) listCourses(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courses, err := h.courses.List(c.UserContext(), client)
	if err != nil {
		return h.handleError(c, err, "Failed to load courses")
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) createCourse(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), client, payload)
	if err != nil {
		return h.handleError(c, err, "Failed to create course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) updateCourse(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return h.handleError(c, err, "Failed to update course")
	}

	var payload dto.CourseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Update(c.UserContext(), client, courseID, payload)
	if err != nil {
		return h.handleError(c, err, "Failed to update course")
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) deleteCourse(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return h.handleError(c, err, "Failed to delete course")
	}

	if err := h.courses.Delete(c.UserContext(), client, courseID); err != nil {
		return h.handleError(c, err, "Failed to delete course")
	}
	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *CourseHandler) listChapters(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return h.handleError(c, err, "Failed to load chapters")
	}

	chapters, err := h.chapters.List(c.UserContext(), client, courseID)
	if err != nil {
		return h.handleError(c, err, "Failed to load chapters")
	}
	return utils.SendSuccess(c, "chapters retrieved", chapters)
}

func (h *CourseHandler) createChapter(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return h.handleError(c, err, "Failed to create chapter")
	}

	var payload dto.ChapterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chapter, err := h.chapters.Create(c.UserContext(), client, courseID, payload)
	if err != nil {
		return h.handleError(c, err, "Failed to create chapter")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "chapter created", chapter)
}

func (h *CourseHandler) getChapter(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	ids, err := parseIDParams(c, "courseId", "chapterId")
	if err != nil {
		return h.handleError(c, err, "Failed to load chapter")
	}

	chapter, err := h.chapters.Get(c.UserContext(), client, ids[0], ids[1])
	if err != nil {
		return h.handleError(c, err, "Failed to load chapter")
	}
	return utils.SendSuccess(c, "chapter retrieved", chapter)
}

func (h *CourseHandler) updateChapter(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	ids, err := parseIDParams(c, "courseId", "chapterId")
	if err != nil {
		return h.handleError(c, err, "Failed to update chapter")
	}

	var payload dto.ChapterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chapter, err := h.chapters.Update(c.UserContext(), client, ids[0], ids[1], payload)
	if err != nil {
		return h.handleError(c, err, "Failed to update chapter")
	}
	return utils.SendSuccess(c, "chapter updated", chapter)
}

func (h *CourseHandler) deleteChapter(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}

	ids, err := parseIDParams(c, "courseId", "chapterId")
	if err != nil {
		return h.handleError(c, err, "Failed to delete chapter")
	}

	if err := h.chapters.Delete(c.UserContext(), client, ids[0], ids[1]); err != nil {
		return h.handleError(c, err, "Failed to delete chapter")
	}
	return utils.SendSuccess(c, "chapter deleted", nil)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	return respondError(c, h.guard, h.logger, err, fallback)
}
