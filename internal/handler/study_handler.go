package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/middleware"
	"github.com/lernix/lernix-web/internal/service"
	"github.com/lernix/lernix-web/internal/utils"
)

const filesPath = "/:courseId/chapters/:chapterId/files"

// StudyHandler serves chapter files and the AI study tools built on them.
type StudyHandler struct {
	study   service.StudyService
	uploads service.UploadService
	guard   *middleware.SessionGuard
	logger  zerolog.Logger
}

// NewStudyHandler constructs a study handler.
func NewStudyHandler(study service.StudyService, uploads service.UploadService, guard *middleware.SessionGuard, logger zerolog.Logger) *StudyHandler {
	return &StudyHandler{
		study:   study,
		uploads: uploads,
		guard:   guard,
		logger:  logger.With().Str("component", "study_handler").Logger(),
	}
}

// Register wires file routes below the course router.
func (h *StudyHandler) Register(router fiber.Router) {
	router.Get(filesPath, h.listFiles)
	router.Post(filesPath, h.upload)
	router.Get(filesPath+"/:fileId/content", h.content)
	router.Post(filesPath+"/:fileId/viewing", h.recordViewing)
	router.Delete(filesPath+"/:fileId", h.deleteFile)
	router.Post(filesPath+"/:fileId/summarize", h.summarize)
	router.Post(filesPath+"/:fileId/ask", h.ask)
	router.Post(filesPath+"/:fileId/mcq", h.createMCQ)
	router.Post(filesPath+"/:fileId/mcq/submit", h.submitMCQ)
}

func (h *StudyHandler) listFiles(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId")
	if err != nil {
		return h.handleError(c, err, "Failed to load files")
	}

	files, err := h.study.ListFiles(c.UserContext(), client, ids[0], ids[1])
	if err != nil {
		return h.handleError(c, err, "Failed to load files")
	}
	return utils.SendSuccess(c, "files retrieved", files)
}

func (h *StudyHandler) upload(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId")
	if err != nil {
		return h.handleError(c, err, "Upload failed")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return h.handleError(c, service.ErrUploadMissing, "Upload failed")
	}

	result, err := h.uploads.Upload(c.UserContext(), client, ids[0], ids[1], file)
	if err != nil {
		return h.handleError(c, err, "Upload failed")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload successful", result)
}

func (h *StudyHandler) content(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to load file content")
	}

	content, err := h.study.FileContent(c.UserContext(), client, ids[0], ids[1], ids[2])
	if err != nil {
		return h.handleError(c, err, "Failed to load file content")
	}
	return utils.SendSuccess(c, "file content retrieved", content)
}

func (h *StudyHandler) recordViewing(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to record viewing time")
	}

	var payload dto.RecordViewingRequest
	if err := parseOptionalBody(c, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.study.RecordViewing(c.UserContext(), client, ids[0], ids[1], ids[2], payload); err != nil {
		return h.handleError(c, err, "Failed to record viewing time")
	}
	return utils.SendSuccess(c, "viewing time recorded", nil)
}

func (h *StudyHandler) deleteFile(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to delete file")
	}

	if err := h.study.DeleteFile(c.UserContext(), client, ids[0], ids[1], ids[2]); err != nil {
		return h.handleError(c, err, "Failed to delete file")
	}
	return utils.SendSuccess(c, "file deleted", nil)
}

func (h *StudyHandler) summarize(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to generate summary")
	}

	var payload dto.SummarizeRequest
	if err := parseOptionalBody(c, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.study.Summarize(c.UserContext(), client, ids[0], ids[1], ids[2], payload)
	if err != nil {
		return h.handleError(c, err, "Failed to generate summary")
	}
	return utils.SendSuccess(c, "summary generated", summary)
}

func (h *StudyHandler) ask(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to get answer")
	}

	var payload dto.AskQuestionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.study.Ask(c.UserContext(), client, ids[0], ids[1], ids[2], payload)
	if err != nil {
		return h.handleError(c, err, "Failed to get answer")
	}
	return utils.SendSuccess(c, "answer generated", answer)
}

func (h *StudyHandler) createMCQ(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to generate MCQs")
	}

	set, err := h.study.CreateMCQ(c.UserContext(), client, ids[0], ids[1], ids[2])
	if err != nil {
		return h.handleError(c, err, "Failed to generate MCQs")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mcq generated", set)
}

func (h *StudyHandler) submitMCQ(c *fiber.Ctx) error {
	client, err := sessionBackend(c, h.guard)
	if client == nil {
		return err
	}
	ids, err := parseIDParams(c, "courseId", "chapterId", "fileId")
	if err != nil {
		return h.handleError(c, err, "Failed to submit answers")
	}

	var payload dto.SubmitMCQRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.study.SubmitMCQ(c.UserContext(), client, ids[0], ids[1], ids[2], payload)
	if err != nil {
		return h.handleError(c, err, "Failed to submit answers")
	}
	return utils.SendSuccess(c, "answers submitted", result)
}

func (h *StudyHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	return respondError(c, h.guard, h.logger, err, fallback)
}

// parseOptionalBody accepts an empty body as the zero payload.
func parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
