package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// unauthorizedErr stands in for a 401 from the backend client.
type unauthorizedErr struct{}

func (unauthorizedErr) Error() string { return "backend test failed with status 401" }
func (unauthorizedErr) Unwrap() error { return backend.ErrUnauthorized }

type fakeInsightsSource struct {
	mu          sync.Mutex
	courses     []models.Course
	coursesErr  error
	chapters    map[int][]models.Chapter
	chaptersErr map[int]error
	series      map[int]ActivitySeries
	activityErr map[models.ActivityKind]error
	attempts    map[int]models.Optional[[]models.MCQAttemptSummary]
	attemptsErr error
	totals      []models.CourseTimeTotal
	gates       map[int]chan struct{}
	started     map[int]chan struct{}
	calls       map[string]int
}

func newFakeInsightsSource() *fakeInsightsSource {
	return &fakeInsightsSource{
		chapters:    map[int][]models.Chapter{},
		chaptersErr: map[int]error{},
		series:      map[int]ActivitySeries{},
		activityErr: map[models.ActivityKind]error{},
		attempts:    map[int]models.Optional[[]models.MCQAttemptSummary]{},
		gates:       map[int]chan struct{}{},
		started:     map[int]chan struct{}{},
		calls:       map[string]int{},
	}
}

func (f *fakeInsightsSource) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeInsightsSource) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeInsightsSource) ListCourses(ctx context.Context) ([]models.Course, error) {
	f.count("courses")
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return f.courses, nil
}

func (f *fakeInsightsSource) ListChapters(ctx context.Context, courseID int) ([]models.Chapter, error) {
	f.count("chapters")
	f.mu.Lock()
	gate := f.gates[courseID]
	started := f.started[courseID]
	delete(f.started, courseID)
	err := f.chaptersErr[courseID]
	chapters := f.chapters[courseID]
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (f *fakeInsightsSource) ActivityTime(ctx context.Context, courseID int, kind models.ActivityKind) ([]models.ActivityTimeRecord, error) {
	f.count("activity." + string(kind))
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.activityErr[kind]; err != nil {
		return nil, err
	}
	return f.series[courseID][kind], nil
}

func (f *fakeInsightsSource) MCQAttempts(ctx context.Context, courseID int) (models.Optional[[]models.MCQAttemptSummary], error) {
	f.count("attempts")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attemptsErr != nil {
		return models.Optional[[]models.MCQAttemptSummary]{}, f.attemptsErr
	}
	result, ok := f.attempts[courseID]
	if !ok {
		return models.Some([]models.MCQAttemptSummary{}), nil
	}
	return result, nil
}

func (f *fakeInsightsSource) TotalTime(ctx context.Context) ([]models.CourseTimeTotal, error) {
	f.count("total_time")
	return f.totals, nil
}

type fakeCourseBackend struct {
	courses []models.Course
	created []dto.CourseRequest
	updated map[int]dto.CourseRequest
	deleted []int
	err     error
}

func (f *fakeCourseBackend) ListCourses(ctx context.Context) ([]models.Course, error) {
	return f.courses, f.err
}

func (f *fakeCourseBackend) CreateCourse(ctx context.Context, req dto.CourseRequest) (models.Course, error) {
	if f.err != nil {
		return models.Course{}, f.err
	}
	f.created = append(f.created, req)
	return models.Course{ID: len(f.created), Title: req.Title, Description: req.Description}, nil
}

func (f *fakeCourseBackend) UpdateCourse(ctx context.Context, courseID int, req dto.CourseRequest) (models.Course, error) {
	if f.err != nil {
		return models.Course{}, f.err
	}
	if f.updated == nil {
		f.updated = map[int]dto.CourseRequest{}
	}
	f.updated[courseID] = req
	return models.Course{}, nil
}

func (f *fakeCourseBackend) DeleteCourse(ctx context.Context, courseID int) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, courseID)
	return nil
}

type fakeStudyBackend struct {
	files      []models.ChapterFile
	uploads    []string
	uploadType string
	summary    models.Summary
	answer     models.Answer
	asked      []dto.AskQuestionRequest
	mcq        models.MCQSet
	submitted  []dto.SubmitMCQRequest
	result     models.MCQResult
	viewings   []dto.RecordViewingRequest
	err        error
}

func (f *fakeStudyBackend) ListFiles(ctx context.Context, courseID, chapterID int) ([]models.ChapterFile, error) {
	return f.files, f.err
}

func (f *fakeStudyBackend) UploadFile(ctx context.Context, courseID, chapterID int, fileName, mimeType string, content []byte) (models.UploadedFile, error) {
	if f.err != nil {
		return models.UploadedFile{}, f.err
	}
	f.uploads = append(f.uploads, fileName)
	f.uploadType = mimeType
	return models.UploadedFile{FileID: len(f.uploads), FileName: fileName, FileSize: int64(len(content))}, nil
}

func (f *fakeStudyBackend) FileContent(ctx context.Context, courseID, chapterID, fileID int) (models.FileContent, error) {
	return models.FileContent{Content: "text"}, f.err
}

func (f *fakeStudyBackend) RecordViewing(ctx context.Context, courseID, chapterID, fileID int, req dto.RecordViewingRequest) error {
	f.viewings = append(f.viewings, req)
	return f.err
}

func (f *fakeStudyBackend) DeleteFile(ctx context.Context, courseID, chapterID, fileID int) error {
	return f.err
}

func (f *fakeStudyBackend) Summarize(ctx context.Context, courseID, chapterID, fileID int, req dto.SummarizeRequest) (models.Summary, error) {
	return f.summary, f.err
}

func (f *fakeStudyBackend) AskQuestion(ctx context.Context, courseID, chapterID, fileID int, req dto.AskQuestionRequest) (models.Answer, error) {
	f.asked = append(f.asked, req)
	return f.answer, f.err
}

func (f *fakeStudyBackend) CreateMCQ(ctx context.Context, courseID, chapterID, fileID int) (models.MCQSet, error) {
	return f.mcq, f.err
}

func (f *fakeStudyBackend) SubmitMCQ(ctx context.Context, courseID, chapterID, fileID int, req dto.SubmitMCQRequest) (models.MCQResult, error) {
	f.submitted = append(f.submitted, req)
	return f.result, f.err
}
