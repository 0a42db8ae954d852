package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

// ErrInvalidID indicates a non-positive resource identifier.
var ErrInvalidID = errors.New("invalid identifier")

// CourseService manages the session user's courses.
type CourseService interface {
	List(ctx context.Context, src CourseBackend) ([]models.Course, error)
	Create(ctx context.Context, src CourseBackend, payload dto.CourseRequest) (models.Course, error)
	Update(ctx context.Context, src CourseBackend, courseID int, payload dto.CourseRequest) (models.Course, error)
	Delete(ctx context.Context, src CourseBackend, courseID int) error
}

type courseService struct {
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(validator *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		validator: validator,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, src CourseBackend) ([]models.Course, error) {
	return src.ListCourses(ctx)
}

func (s *courseService) Create(ctx context.Context, src CourseBackend, payload dto.CourseRequest) (models.Course, error) {
	payload = payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return models.Course{}, err
	}

	course, err := src.CreateCourse(ctx, payload)
	if err != nil {
		return models.Course{}, err
	}
	if course.Title == "" {
		course.Title = payload.Title
		course.Description = payload.Description
	}
	s.logger.Info().Int("course_id", course.ID).Msg("course created")
	return course, nil
}

func (s *courseService) Update(ctx context.Context, src CourseBackend, courseID int, payload dto.CourseRequest) (models.Course, error) {
	if courseID <= 0 {
		return models.Course{}, ErrInvalidID
	}
	payload = payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return models.Course{}, err
	}

	course, err := src.UpdateCourse(ctx, courseID, payload)
	if err != nil {
		return models.Course{}, err
	}
	if course.ID == 0 {
		course = models.Course{ID: courseID, Title: payload.Title, Description: payload.Description}
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, src CourseBackend, courseID int) error {
	if courseID <= 0 {
		return ErrInvalidID
	}
	if err := src.DeleteCourse(ctx, courseID); err != nil {
		return err
	}
	s.logger.Info().Int("course_id", courseID).Msg("course deleted")
	return nil
}
