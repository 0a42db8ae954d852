package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/dto"
)

// ChapterService manages the chapters of a course.
type ChapterService interface {
	List(ctx context.Context, src ChapterBackend, courseID int) ([]dto.ChapterResponse, error)
	Get(ctx context.Context, src ChapterBackend, courseID, chapterID int) (dto.ChapterResponse, error)
	Create(ctx context.Context, src ChapterBackend, courseID int, payload dto.ChapterRequest) (dto.ChapterResponse, error)
	Update(ctx context.Context, src ChapterBackend, courseID, chapterID int, payload dto.ChapterRequest) (dto.ChapterResponse, error)
	Delete(ctx context.Context, src ChapterBackend, courseID, chapterID int) error
}

type chapterService struct {
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewChapterService constructs the chapter service.
func NewChapterService(validator *validator.Validate, logger zerolog.Logger) ChapterService {
	return &chapterService{
		validator: validator,
		logger:    logger.With().Str("component", "chapter_service").Logger(),
	}
}

func (s *chapterService) List(ctx context.Context, src ChapterBackend, courseID int) ([]dto.ChapterResponse, error) {
	if courseID <= 0 {
		return nil, ErrInvalidID
	}
	chapters, err := src.ListChapters(ctx, courseID)
	if err != nil {
		return nil, err
	}

	response := make([]dto.ChapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		item := dto.NewChapterResponse(chapter)
		if item.CourseID == 0 {
			item.CourseID = courseID
		}
		response = append(response, item)
	}
	return response, nil
}

func (s *chapterService) Get(ctx context.Context, src ChapterBackend, courseID, chapterID int) (dto.ChapterResponse, error) {
	if courseID <= 0 || chapterID <= 0 {
		return dto.ChapterResponse{}, ErrInvalidID
	}
	chapter, err := src.GetChapter(ctx, courseID, chapterID)
	if err != nil {
		return dto.ChapterResponse{}, err
	}
	return dto.NewChapterResponse(chapter), nil
}

func (s *chapterService) Create(ctx context.Context, src ChapterBackend, courseID int, payload dto.ChapterRequest) (dto.ChapterResponse, error) {
	if courseID <= 0 {
		return dto.ChapterResponse{}, ErrInvalidID
	}
	payload = payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChapterResponse{}, err
	}

	chapter, err := src.CreateChapter(ctx, courseID, payload)
	if err != nil {
		return dto.ChapterResponse{}, err
	}
	response := dto.NewChapterResponse(chapter)
	if response.Title == "" {
		response.Title = payload.Title
		response.Description = payload.Description
	}
	if response.CourseID == 0 {
		response.CourseID = courseID
	}
	s.logger.Info().Int("course_id", courseID).Int("chapter_id", response.ID).Msg("chapter created")
	return response, nil
}

func (s *chapterService) Update(ctx context.Context, src ChapterBackend, courseID, chapterID int, payload dto.ChapterRequest) (dto.ChapterResponse, error) {
	if courseID <= 0 || chapterID <= 0 {
		return dto.ChapterResponse{}, ErrInvalidID
	}
	payload = payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChapterResponse{}, err
	}

	chapter, err := src.UpdateChapter(ctx, courseID, chapterID, payload)
	if err != nil {
		return dto.ChapterResponse{}, err
	}
	response := dto.NewChapterResponse(chapter)
	if response.ID == 0 {
		response = dto.ChapterResponse{ID: chapterID, CourseID: courseID, Title: payload.Title, Description: payload.Description}
	}
	return response, nil
}

func (s *chapterService) Delete(ctx context.Context, src ChapterBackend, courseID, chapterID int) error {
	if courseID <= 0 || chapterID <= 0 {
		return ErrInvalidID
	}
	return src.DeleteChapter(ctx, courseID, chapterID)
}
