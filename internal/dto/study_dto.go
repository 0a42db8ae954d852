package dto

import (
	"encoding/json"

	"github.com/lernix/lernix-web/internal/models"
)

// SummarizeRequest asks the AI backend to summarise a file.
type SummarizeRequest struct {
	DurationSeconds int `json:"duration_seconds" validate:"gte=0"`
}

// AskQuestionRequest asks the AI backend a question about a file.
type AskQuestionRequest struct {
	Question        string `json:"question" validate:"required,max=2000"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
}

// RecordViewingRequest reports how long a file was open.
type RecordViewingRequest struct {
	DurationSeconds int `json:"duration_seconds" validate:"gte=0"`
}

// SubmitMCQRequest carries the learner's answers keyed by question number.
type SubmitMCQRequest struct {
	Questions        []models.MCQQuestion `json:"questions,omitempty"`
	Answers          map[string]string    `json:"answers" validate:"required"`
	TimeSpentSeconds int                  `json:"time_spent_seconds" validate:"gte=0"`
	FullQuestions    json.RawMessage      `json:"full_questions,omitempty"`
}

// SummaryResponse is the sanitised AI summary.
type SummaryResponse struct {
	FileID  int    `json:"file_id"`
	Summary string `json:"summary"`
}

// AnswerResponse is the sanitised AI answer.
type AnswerResponse struct {
	FileID   int    `json:"file_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// UploadResponse acknowledges a stored upload.
type UploadResponse struct {
	FileID   int    `json:"file_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}
