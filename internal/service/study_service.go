package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

var (
	// ErrUnansweredQuestions indicates a quiz was submitted with blank answers.
	ErrUnansweredQuestions = errors.New("unanswered questions")
	// ErrInvalidMCQResponse indicates the backend returned a quiz without questions.
	ErrInvalidMCQResponse = errors.New("invalid response format from server")
)

// UnansweredQuestionsError reports how many questions are still blank.
type UnansweredQuestionsError struct {
	Remaining int
}

func (e *UnansweredQuestionsError) Error() string {
	return fmt.Sprintf("Please answer all questions. %d question(s) remaining.", e.Remaining)
}

// Is lets errors.Is match ErrUnansweredQuestions.
func (e *UnansweredQuestionsError) Is(target error) bool {
	return target == ErrUnansweredQuestions
}

// StudyService covers chapter files and the AI study features.
type StudyService interface {
	ListFiles(ctx context.Context, src StudyBackend, courseID, chapterID int) ([]models.ChapterFile, error)
	FileContent(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) (models.FileContent, error)
	RecordViewing(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.RecordViewingRequest) error
	DeleteFile(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) error
	Summarize(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.SummarizeRequest) (dto.SummaryResponse, error)
	Ask(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.AskQuestionRequest) (dto.AnswerResponse, error)
	CreateMCQ(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) (models.MCQSet, error)
	SubmitMCQ(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.SubmitMCQRequest) (models.MCQResult, error)
}

type studyService struct {
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	tracer    trace.Tracer
}

// NewStudyService constructs the study service.
func NewStudyService(validator *validator.Validate, logger zerolog.Logger) StudyService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "ul", "ol", "li", "br", "code", "pre")
	return &studyService{
		validator: validator,
		logger:    logger.With().Str("component", "study_service").Logger(),
		policy:    policy,
		tracer:    otel.Tracer("github.com/lernix/lernix-web/internal/service/study"),
	}
}

func validIDs(ids ...int) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}

func (s *studyService) ListFiles(ctx context.Context, src StudyBackend, courseID, chapterID int) ([]models.ChapterFile, error) {
	if err := validIDs(courseID, chapterID); err != nil {
		return nil, err
	}
	return src.ListFiles(ctx, courseID, chapterID)
}

func (s *studyService) FileContent(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) (models.FileContent, error) {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return models.FileContent{}, err
	}
	content, err := src.FileContent(ctx, courseID, chapterID, fileID)
	if err != nil {
		return models.FileContent{}, err
	}
	if content.FileID == 0 {
		content.FileID = fileID
	}
	return content, nil
}

func (s *studyService) RecordViewing(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.RecordViewingRequest) error {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return err
	}
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	return src.RecordViewing(ctx, courseID, chapterID, fileID, payload)
}

func (s *studyService) DeleteFile(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) error {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return err
	}
	if err := src.DeleteFile(ctx, courseID, chapterID, fileID); err != nil {
		return err
	}
	s.logger.Info().Int("course_id", courseID).Int("chapter_id", chapterID).Int("file_id", fileID).Msg("chapter file deleted")
	return nil
}

func (s *studyService) Summarize(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.SummarizeRequest) (dto.SummaryResponse, error) {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return dto.SummaryResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SummaryResponse{}, err
	}

	ctx, span := s.startAI(ctx, "ai.summarize", fileID)
	defer span.End()

	summary, err := src.Summarize(ctx, courseID, chapterID, fileID, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarize failed")
		return dto.SummaryResponse{}, err
	}
	span.SetStatus(codes.Ok, "summarized")

	return dto.SummaryResponse{
		FileID:  fileID,
		Summary: strings.TrimSpace(s.policy.Sanitize(summary.Summary)),
	}, nil
}

func (s *studyService) Ask(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.AskQuestionRequest) (dto.AnswerResponse, error) {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return dto.AnswerResponse{}, err
	}
	payload.Question = strings.TrimSpace(payload.Question)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnswerResponse{}, err
	}

	ctx, span := s.startAI(ctx, "ai.ask", fileID)
	defer span.End()

	answer, err := src.AskQuestion(ctx, courseID, chapterID, fileID, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ask failed")
		return dto.AnswerResponse{}, err
	}
	span.SetStatus(codes.Ok, "answered")

	return dto.AnswerResponse{
		FileID:   fileID,
		Question: payload.Question,
		Answer:   strings.TrimSpace(s.policy.Sanitize(answer.Answer)),
	}, nil
}

func (s *studyService) CreateMCQ(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int) (models.MCQSet, error) {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return models.MCQSet{}, err
	}

	ctx, span := s.startAI(ctx, "ai.create_mcq", fileID)
	defer span.End()

	set, err := src.CreateMCQ(ctx, courseID, chapterID, fileID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create mcq failed")
		return models.MCQSet{}, err
	}
	if set.Questions == nil {
		span.SetStatus(codes.Error, "no questions")
		return models.MCQSet{}, ErrInvalidMCQResponse
	}
	span.SetAttributes(attribute.Int("mcq.questions", len(set.Questions)))
	span.SetStatus(codes.Ok, "generated")
	return set, nil
}

func (s *studyService) SubmitMCQ(ctx context.Context, src StudyBackend, courseID, chapterID, fileID int, payload dto.SubmitMCQRequest) (models.MCQResult, error) {
	if err := validIDs(courseID, chapterID, fileID); err != nil {
		return models.MCQResult{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.MCQResult{}, err
	}
	if remaining := unansweredCount(payload); remaining > 0 {
		return models.MCQResult{}, &UnansweredQuestionsError{Remaining: remaining}
	}

	ctx, span := s.startAI(ctx, "ai.submit_mcq", fileID)
	defer span.End()

	result, err := src.SubmitMCQ(ctx, courseID, chapterID, fileID, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit mcq failed")
		return models.MCQResult{}, err
	}
	span.SetAttributes(attribute.Float64("mcq.percentage", result.Score.Percentage))
	span.SetStatus(codes.Ok, "graded")
	return result, nil
}

func (s *studyService) startAI(ctx context.Context, name string, fileID int) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int("file.id", fileID)))
}

// unansweredCount counts questions without a non-blank answer. The question
// numbers come from the visible questions, else from the echoed answer key.
func unansweredCount(payload dto.SubmitMCQRequest) int {
	numbers := make([]int, 0, len(payload.Questions))
	for _, question := range payload.Questions {
		numbers = append(numbers, question.QuestionNumber)
	}
	if len(numbers) == 0 && len(payload.FullQuestions) > 0 {
		var full []struct {
			QuestionNumber int `json:"question_number"`
		}
		if err := json.Unmarshal(payload.FullQuestions, &full); err == nil {
			for _, question := range full {
				numbers = append(numbers, question.QuestionNumber)
			}
		}
	}

	remaining := 0
	for _, number := range numbers {
		if strings.TrimSpace(payload.Answers[strconv.Itoa(number)]) == "" {
			remaining++
		}
	}
	return remaining
}
