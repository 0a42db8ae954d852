package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/observability"
)

// ErrSelectionSuperseded is returned to a selection whose results arrived
// after a newer selection had started. Its results were discarded.
var ErrSelectionSuperseded = errors.New("course selection superseded by a newer selection")

const insightsFailureMessage = "Failed to load insights"

// InsightsSnapshot is the state of one session's insights page.
type InsightsSnapshot struct {
	SelectionID uint64
	Course      *models.Course
	Chapters    []models.Chapter
	Activity    ActivityAggregate
	Attempts    MCQAggregate
	Loading     bool
	Error       string
	UpdatedAt   time.Time
}

// CourseSelector owns the selected course of one session. Each selection is
// tagged with an increasing id and only the latest may commit its results.
type CourseSelector struct {
	activity *ActivityTimeAggregator
	attempts *MCQPerformanceAggregator
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	latest   uint64
	snapshot InsightsSnapshot
	lastUsed time.Time
}

// NewCourseSelector constructs an empty selector.
func NewCourseSelector(activity *ActivityTimeAggregator, attempts *MCQPerformanceAggregator, logger zerolog.Logger) *CourseSelector {
	return &CourseSelector{
		activity: activity,
		attempts: attempts,
		logger:   logger.With().Str("component", "course_selector").Logger(),
		now:      time.Now,
		lastUsed: time.Now(),
	}
}

// Snapshot returns the current state.
func (s *CourseSelector) Snapshot() InsightsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return s.snapshot
}

// Selected returns the currently selected course, if any.
func (s *CourseSelector) Selected() (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Course == nil {
		return models.Course{}, false
	}
	return *s.snapshot.Course, true
}

// Select makes course current and loads its chapters, activity series and
// quiz attempts concurrently. Prior aggregates are cleared while loading.
func (s *CourseSelector) Select(ctx context.Context, src InsightsSource, course models.Course) (InsightsSnapshot, error) {
	s.mu.Lock()
	s.latest++
	id := s.latest
	selected := course
	s.snapshot = InsightsSnapshot{
		SelectionID: id,
		Course:      &selected,
		Loading:     true,
		UpdatedAt:   s.now(),
	}
	s.lastUsed = s.now()
	s.mu.Unlock()

	var (
		chapters []models.Chapter
		series   ActivitySeries
		attempts MCQAggregate
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		chapters, err = src.ListChapters(groupCtx, course.ID)
		return err
	})
	group.Go(func() error {
		var err error
		series, err = s.activity.FetchSeries(groupCtx, src, course.ID)
		return err
	})
	group.Go(func() error {
		var err error
		attempts, err = s.attempts.Fetch(groupCtx, src, course.ID)
		return err
	})

	if err := group.Wait(); err != nil {
		observability.InsightsFetches().WithLabelValues("error").Inc()
		failed := InsightsSnapshot{
			SelectionID: id,
			Course:      &selected,
			Error:       backend.Message(err, insightsFailureMessage),
			UpdatedAt:   s.now(),
		}
		if _, commitErr := s.commit(id, failed); commitErr != nil && !errors.Is(err, backend.ErrUnauthorized) {
			return InsightsSnapshot{}, commitErr
		}
		s.logger.Warn().Err(err).Int("course_id", course.ID).Uint64("selection_id", id).Msg("insights fetch failed")
		return failed, err
	}

	ready := InsightsSnapshot{
		SelectionID: id,
		Course:      &selected,
		Chapters:    chapters,
		Activity:    BuildActivityAggregate(series, chapters),
		Attempts:    attempts,
		UpdatedAt:   s.now(),
	}
	committed, err := s.commit(id, ready)
	if err != nil {
		return InsightsSnapshot{}, err
	}
	observability.InsightsFetches().WithLabelValues("success").Inc()
	return committed, nil
}

func (s *CourseSelector) commit(id uint64, next InsightsSnapshot) (InsightsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.latest {
		observability.InsightsStaleResults().Inc()
		s.logger.Debug().Uint64("selection_id", id).Uint64("latest_id", s.latest).Msg("discarding stale insights result")
		return InsightsSnapshot{}, ErrSelectionSuperseded
	}
	s.snapshot = next
	return next, nil
}

func (s *CourseSelector) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}
