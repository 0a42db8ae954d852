package dto

import "time"

// Chart kinds understood by the insights page.
const (
	ChartLine = "line"
	ChartBar  = "bar"
)

// SelectCourseRequest changes the course shown on the insights page.
type SelectCourseRequest struct {
	CourseID int `json:"course_id" validate:"required,gt=0"`
}

// CourseOption is one entry of the insights course list.
type CourseOption struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// CourseTimeResponse is the total study time of a course in minutes.
type CourseTimeResponse struct {
	CourseID    int    `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Minutes     int64  `json:"minutes"`
}

// ChartPoint is one x/y value of a chart; x is the chapter name.
type ChartPoint struct {
	ChapterID int     `json:"chapter_id"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
}

// Chart is a chart-ready series.
type Chart struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	Kind       string       `json:"kind"`
	XLabel     string       `json:"x_label"`
	YLabel     string       `json:"y_label"`
	YDomain    []float64    `json:"y_domain,omitempty"`
	ValueUnit  string       `json:"value_unit"`
	Points     []ChartPoint `json:"points"`
	EmptyLabel string       `json:"empty_label,omitempty"`
}

// AttemptRow is one row of the MCQ attempts table.
type AttemptRow struct {
	ChapterID     int     `json:"chapter_id"`
	ChapterName   string  `json:"chapter_name"`
	Attempts      int     `json:"attempts"`
	AvgScore      float64 `json:"avg_score"`
	AvgScoreLabel string  `json:"avg_score_label"`
}

// AttemptsTable is the tabular view of quiz attempts.
type AttemptsTable struct {
	Available  bool         `json:"available"`
	Rows       []AttemptRow `json:"rows"`
	EmptyLabel string       `json:"empty_label,omitempty"`
}

// SelectedCourse identifies the course the dashboard describes.
type SelectedCourse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// InsightsDashboard is the complete view model of the insights page.
type InsightsDashboard struct {
	SelectionID    uint64          `json:"selection_id"`
	Course         *SelectedCourse `json:"course"`
	Courses        []CourseOption  `json:"courses"`
	Loading        bool            `json:"loading"`
	Error          string          `json:"error,omitempty"`
	ActivityCharts []Chart         `json:"activity_charts"`
	TotalChart     Chart           `json:"total_chart"`
	AccuracyChart  Chart           `json:"accuracy_chart"`
	AttemptsTable  AttemptsTable   `json:"attempts_table"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
