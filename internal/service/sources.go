package service

import (
	"context"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

// CourseSource lists the courses visible to the session user.
type CourseSource interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
}

// ChapterSource lists the chapters of a course.
type ChapterSource interface {
	ListChapters(ctx context.Context, courseID int) ([]models.Chapter, error)
}

// ActivitySource fetches one raw time-spent series.
type ActivitySource interface {
	ActivityTime(ctx context.Context, courseID int, kind models.ActivityKind) ([]models.ActivityTimeRecord, error)
}

// AttemptsSource fetches quiz attempt summaries from an endpoint the backend may not expose.
type AttemptsSource interface {
	MCQAttempts(ctx context.Context, courseID int) (models.Optional[[]models.MCQAttemptSummary], error)
}

// InsightsSource is everything the insights page reads.
type InsightsSource interface {
	CourseSource
	ChapterSource
	ActivitySource
	AttemptsSource
	TotalTime(ctx context.Context) ([]models.CourseTimeTotal, error)
}

// CourseBackend performs course mutations.
type CourseBackend interface {
	CourseSource
	CreateCourse(ctx context.Context, req dto.CourseRequest) (models.Course, error)
	UpdateCourse(ctx context.Context, courseID int, req dto.CourseRequest) (models.Course, error)
	DeleteCourse(ctx context.Context, courseID int) error
}

// ChapterBackend performs chapter reads and mutations.
type ChapterBackend interface {
	ChapterSource
	GetChapter(ctx context.Context, courseID, chapterID int) (models.Chapter, error)
	CreateChapter(ctx context.Context, courseID int, req dto.ChapterRequest) (models.Chapter, error)
	UpdateChapter(ctx context.Context, courseID, chapterID int, req dto.ChapterRequest) (models.Chapter, error)
	DeleteChapter(ctx context.Context, courseID, chapterID int) error
}

// StudyBackend covers chapter files and the AI features built on them.
type StudyBackend interface {
	ListFiles(ctx context.Context, courseID, chapterID int) ([]models.ChapterFile, error)
	UploadFile(ctx context.Context, courseID, chapterID int, fileName, mimeType string, content []byte) (models.UploadedFile, error)
	FileContent(ctx context.Context, courseID, chapterID, fileID int) (models.FileContent, error)
	RecordViewing(ctx context.Context, courseID, chapterID, fileID int, req dto.RecordViewingRequest) error
	DeleteFile(ctx context.Context, courseID, chapterID, fileID int) error
	Summarize(ctx context.Context, courseID, chapterID, fileID int, req dto.SummarizeRequest) (models.Summary, error)
	AskQuestion(ctx context.Context, courseID, chapterID, fileID int, req dto.AskQuestionRequest) (models.Answer, error)
	CreateMCQ(ctx context.Context, courseID, chapterID, fileID int) (models.MCQSet, error)
	SubmitMCQ(ctx context.Context, courseID, chapterID, fileID int, req dto.SubmitMCQRequest) (models.MCQResult, error)
}
