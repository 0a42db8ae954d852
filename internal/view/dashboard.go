package view

import (
	"strconv"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/service"
)

const (
	minutesLabel       = "Minutes"
	chapterLabel       = "Chapter"
	noAttemptsMessage  = "No MCQ attempts recorded yet."
	noActivityMessage  = "No activity recorded yet."
	attemptsNotTracked = "MCQ attempt tracking is not available yet."
)

type activityChart struct {
	kind  models.ActivityKind
	title string
}

// activityCharts fixes the order of the per-kind charts on the page.
var activityCharts = []activityChart{
	{kind: models.ActivitySummary, title: "Summary Time"},
	{kind: models.ActivityAsk, title: "Ask Questions Time"},
	{kind: models.ActivityMCQ, title: "MCQ Time"},
	{kind: models.ActivityViewContent, title: "View Content Time"},
}

// BuildDashboard turns an insights snapshot into the page view model. It
// derives nothing beyond formatting; every number comes from the aggregates.
func BuildDashboard(snapshot service.InsightsSnapshot, courses []models.Course) dto.InsightsDashboard {
	dashboard := dto.InsightsDashboard{
		SelectionID:    snapshot.SelectionID,
		Courses:        CourseOptions(courses, snapshot.Course),
		Loading:        snapshot.Loading,
		Error:          snapshot.Error,
		ActivityCharts: make([]dto.Chart, 0, len(activityCharts)),
		UpdatedAt:      snapshot.UpdatedAt,
	}
	if snapshot.Course != nil {
		dashboard.Course = &dto.SelectedCourse{
			ID:          snapshot.Course.ID,
			Title:       snapshot.Course.Title,
			Description: snapshot.Course.Description,
		}
	}

	for _, def := range activityCharts {
		dashboard.ActivityCharts = append(dashboard.ActivityCharts, lineChart(def, snapshot.Activity.Series[def.kind]))
	}
	dashboard.TotalChart = totalChart(snapshot.Activity.Totals)
	dashboard.AccuracyChart = accuracyChart(snapshot.Attempts.Attempted)
	dashboard.AttemptsTable = attemptsTable(snapshot.Attempts)
	return dashboard
}

// CourseOptions marks the selected course within the list.
func CourseOptions(courses []models.Course, selected *models.Course) []dto.CourseOption {
	options := make([]dto.CourseOption, 0, len(courses))
	for _, course := range courses {
		options = append(options, dto.CourseOption{
			ID:       course.ID,
			Title:    course.Title,
			Selected: selected != nil && selected.ID == course.ID,
		})
	}
	return options
}

func lineChart(def activityChart, points []models.ActivityTimePoint) dto.Chart {
	chart := dto.Chart{
		Key:        string(def.kind),
		Title:      def.title,
		Kind:       dto.ChartLine,
		XLabel:     chapterLabel,
		YLabel:     minutesLabel,
		ValueUnit:  "min",
		Points:     make([]dto.ChartPoint, 0, len(points)),
		EmptyLabel: noActivityMessage,
	}
	for _, point := range points {
		chart.Points = append(chart.Points, dto.ChartPoint{
			ChapterID: point.ChapterID,
			Label:     point.ChapterName,
			Value:     float64(point.Minutes),
		})
	}
	return chart
}

func totalChart(totals []models.ChapterTimeTotal) dto.Chart {
	chart := dto.Chart{
		Key:        "total",
		Title:      "Total Time Spent",
		Kind:       dto.ChartBar,
		XLabel:     chapterLabel,
		YLabel:     minutesLabel,
		ValueUnit:  "min",
		Points:     make([]dto.ChartPoint, 0, len(totals)),
		EmptyLabel: noActivityMessage,
	}
	for _, total := range totals {
		chart.Points = append(chart.Points, dto.ChartPoint{
			ChapterID: total.ChapterID,
			Label:     total.ChapterName,
			Value:     float64(total.Total),
		})
	}
	return chart
}

func accuracyChart(attempted []models.MCQAttemptSummary) dto.Chart {
	chart := dto.Chart{
		Key:        "mcq_accuracy",
		Title:      "MCQ Accuracy",
		Kind:       dto.ChartBar,
		XLabel:     chapterLabel,
		YLabel:     "Average Score %",
		YDomain:    []float64{0, 100},
		ValueUnit:  "%",
		Points:     make([]dto.ChartPoint, 0, len(attempted)),
		EmptyLabel: noAttemptsMessage,
	}
	for _, row := range attempted {
		chart.Points = append(chart.Points, dto.ChartPoint{
			ChapterID: row.ChapterID,
			Label:     row.ChapterName,
			Value:     row.AvgScore,
		})
	}
	return chart
}

func attemptsTable(aggregate service.MCQAggregate) dto.AttemptsTable {
	table := dto.AttemptsTable{
		Available: aggregate.Available,
		Rows:      make([]dto.AttemptRow, 0, len(aggregate.Attempted)),
	}
	for _, row := range aggregate.Attempted {
		table.Rows = append(table.Rows, dto.AttemptRow{
			ChapterID:     row.ChapterID,
			ChapterName:   row.ChapterName,
			Attempts:      row.Attempts,
			AvgScore:      row.AvgScore,
			AvgScoreLabel: FormatPercent(row.AvgScore),
		})
	}
	if len(table.Rows) == 0 {
		table.EmptyLabel = noAttemptsMessage
		// All is nil until a fetch has completed.
		if aggregate.All != nil && !aggregate.Available && !aggregate.Degraded {
			table.EmptyLabel = attemptsNotTracked
		}
	}
	return table
}

// FormatPercent renders a score the way the page shows it, e.g. "75%".
func FormatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64) + "%"
}
