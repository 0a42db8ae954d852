package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

// ErrCourseNotFound indicates the course is not among the session user's courses.
var ErrCourseNotFound = errors.New("course not found")

// InsightsService keeps one course selector per session and serves the insights page.
type InsightsService interface {
	Courses(ctx context.Context, sessionID string, src InsightsSource) ([]models.Course, *models.Course, error)
	Dashboard(ctx context.Context, sessionID string, src InsightsSource) (InsightsSnapshot, []models.Course, error)
	Select(ctx context.Context, sessionID string, src InsightsSource, courseID int) (InsightsSnapshot, []models.Course, error)
	TotalTime(ctx context.Context, src InsightsSource) ([]dto.CourseTimeResponse, error)
	Forget(sessionID string)
}

type insightsService struct {
	activity *ActivityTimeAggregator
	attempts *MCQPerformanceAggregator
	idleTTL  time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	selectors map[string]*CourseSelector
}

// NewInsightsService constructs the insights service. Selectors unused for
// idleTTL are dropped.
func NewInsightsService(activity *ActivityTimeAggregator, attempts *MCQPerformanceAggregator, idleTTL time.Duration, logger zerolog.Logger) InsightsService {
	if idleTTL <= 0 {
		idleTTL = 20 * time.Minute
	}
	return &insightsService{
		activity:  activity,
		attempts:  attempts,
		idleTTL:   idleTTL,
		logger:    logger.With().Str("component", "insights_service").Logger(),
		now:       time.Now,
		selectors: make(map[string]*CourseSelector),
	}
}

// Courses lists the session user's courses along with the selected one, if
// it is still among them. It never triggers a fetch of aggregates.
func (s *insightsService) Courses(ctx context.Context, sessionID string, src InsightsSource) ([]models.Course, *models.Course, error) {
	courses, err := src.ListCourses(ctx)
	if err != nil {
		return nil, nil, err
	}

	selected, ok := s.selector(sessionID).Selected()
	if !ok {
		return courses, nil, nil
	}
	if course, found := findCourse(courses, selected.ID); found {
		return courses, &course, nil
	}
	return courses, nil, nil
}

// Dashboard returns the current snapshot, selecting the first course when
// nothing has been selected yet.
func (s *insightsService) Dashboard(ctx context.Context, sessionID string, src InsightsSource) (InsightsSnapshot, []models.Course, error) {
	courses, err := src.ListCourses(ctx)
	if err != nil {
		return InsightsSnapshot{}, nil, err
	}

	selector := s.selector(sessionID)
	if selected, ok := selector.Selected(); ok {
		if _, found := findCourse(courses, selected.ID); found {
			return selector.Snapshot(), courses, nil
		}
	}
	if len(courses) == 0 {
		return InsightsSnapshot{}, courses, nil
	}

	snapshot, err := selector.Select(ctx, src, courses[0])
	return snapshot, courses, err
}

// Select makes courseID current for the session and loads its aggregates.
func (s *insightsService) Select(ctx context.Context, sessionID string, src InsightsSource, courseID int) (InsightsSnapshot, []models.Course, error) {
	courses, err := src.ListCourses(ctx)
	if err != nil {
		return InsightsSnapshot{}, nil, err
	}
	course, found := findCourse(courses, courseID)
	if !found {
		return InsightsSnapshot{}, courses, ErrCourseNotFound
	}

	snapshot, err := s.selector(sessionID).Select(ctx, src, course)
	return snapshot, courses, err
}

// TotalTime returns each course's accumulated study time in minutes.
func (s *insightsService) TotalTime(ctx context.Context, src InsightsSource) ([]dto.CourseTimeResponse, error) {
	totals, err := src.TotalTime(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]dto.CourseTimeResponse, 0, len(totals))
	for _, total := range totals {
		response = append(response, dto.CourseTimeResponse{
			CourseID:    total.CourseID,
			CourseTitle: total.CourseTitle,
			Minutes:     SecondsToMinutes(total.TotalTimeSpentSeconds),
		})
	}
	return response, nil
}

// Forget drops the selector of a session that ended.
func (s *insightsService) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selectors, sessionID)
}

func (s *insightsService) selector(sessionID string) *CourseSelector {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, selector := range s.selectors {
		if id != sessionID && selector.idleSince(now) > s.idleTTL {
			delete(s.selectors, id)
		}
	}

	selector, ok := s.selectors[sessionID]
	if !ok {
		selector = NewCourseSelector(s.activity, s.attempts, s.logger)
		s.selectors[sessionID] = selector
	}
	return selector
}

func findCourse(courses []models.Course, courseID int) (models.Course, bool) {
	for _, course := range courses {
		if course.ID == courseID {
			return course, true
		}
	}
	return models.Course{}, false
}
