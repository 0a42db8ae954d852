package models

import "encoding/json"

// MCQQuestion is a generated multiple choice question without its answer key.
type MCQQuestion struct {
	QuestionNumber int               `json:"question_number"`
	Question       string            `json:"question"`
	Options        map[string]string `json:"options"`
}

// MCQSet is the backend payload for a freshly generated quiz. FullQuestions
// carries the answer key and is echoed back on submit untouched.
type MCQSet struct {
	Questions     []MCQQuestion   `json:"questions"`
	FullQuestions json.RawMessage `json:"full_questions,omitempty"`
}

// MCQScore summarises a graded submission.
type MCQScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// MCQQuestionResult is the grading of one question.
type MCQQuestionResult struct {
	QuestionNumber int               `json:"question_number"`
	Question       string            `json:"question"`
	Options        map[string]string `json:"options,omitempty"`
	UserAnswer     string            `json:"user_answer"`
	CorrectAnswer  string            `json:"correct_answer"`
	IsCorrect      bool              `json:"is_correct"`
	Explanation    string            `json:"explanation,omitempty"`
}

// MCQResult is the backend response to a quiz submission.
type MCQResult struct {
	Score   MCQScore            `json:"score"`
	Results []MCQQuestionResult `json:"results"`
}

// Summary is the AI summary of a chapter file.
type Summary struct {
	Summary string `json:"summary"`
}

// Answer is the AI answer to a question about a chapter file.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
