package models

// ActivityKind tags which study feature produced a time-spent record.
type ActivityKind string

// Activity kinds reported by the insights endpoint.
const (
	ActivityViewContent ActivityKind = "view_content"
	ActivitySummary     ActivityKind = "summary"
	ActivityAsk         ActivityKind = "ask"
	ActivityMCQ         ActivityKind = "mcq"
)

// ActivityKinds lists every kind in dashboard display order.
var ActivityKinds = []ActivityKind{ActivitySummary, ActivityAsk, ActivityMCQ, ActivityViewContent}

// Valid reports whether the kind is one the backend understands.
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityViewContent, ActivitySummary, ActivityAsk, ActivityMCQ:
		return true
	}
	return false
}

// ActivityTimeRecord is one (chapter, activity kind) row in seconds.
type ActivityTimeRecord struct {
	ChapterID        int     `json:"chapter_id"`
	ChapterName      string  `json:"chapter_name"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
}

// ActivityTimePoint is an ActivityTimeRecord converted to whole minutes.
type ActivityTimePoint struct {
	ChapterID   int    `json:"chapter_id"`
	ChapterName string `json:"chapter_name"`
	Minutes     int64  `json:"minutes"`
}

// ChapterTimeTotal is the per-chapter sum across every activity kind, in minutes.
type ChapterTimeTotal struct {
	ChapterID   int    `json:"chapter_id"`
	ChapterName string `json:"chapter_name"`
	Total       int64  `json:"total"`
}

// MCQAttemptSummary aggregates quiz attempts for one chapter.
type MCQAttemptSummary struct {
	ChapterID   int     `json:"chapter_id"`
	ChapterName string  `json:"chapter_name"`
	Attempts    int     `json:"attempts"`
	AvgScore    float64 `json:"avg_score"`
	LastAttempt *string `json:"last_attempt,omitempty"`
}

// Optional is the result of a call to an endpoint the backend may not expose.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some wraps a value returned by an available endpoint.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Present: true}
}

// Absent marks an endpoint the backend does not provide.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}
