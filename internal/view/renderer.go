package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/lernix/lernix-web/internal/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

// InsightsPage is the data handed to the insights template.
type InsightsPage struct {
	AppName    string
	Dashboard  dto.InsightsDashboard
	SelectPath string
	LogoutPath string
}

// Renderer renders server side pages.
type Renderer struct {
	insights *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	insights, err := template.New("insights.html").Funcs(template.FuncMap{
		"barPercent":  barPercent,
		"formatValue": formatValue,
	}).ParseFS(templateFS, "templates/insights.html")
	if err != nil {
		return nil, fmt.Errorf("parse insights template: %w", err)
	}
	return &Renderer{insights: insights}, nil
}

// RenderInsights writes the insights page.
func (r *Renderer) RenderInsights(w io.Writer, page InsightsPage) error {
	return r.insights.Execute(w, page)
}

// barPercent scales value against the chart's domain, or its largest value
// when the chart has no fixed domain.
func barPercent(chart dto.Chart, value float64) float64 {
	upper := 0.0
	if len(chart.YDomain) == 2 {
		upper = chart.YDomain[1]
	} else {
		for _, point := range chart.Points {
			upper = math.Max(upper, point.Value)
		}
	}
	if upper <= 0 || value <= 0 {
		return 0
	}
	return math.Min(100, math.Round(value/upper*1000)/10)
}

func formatValue(chart dto.Chart, value float64) string {
	if chart.ValueUnit == "%" {
		return FormatPercent(value)
	}
	return fmt.Sprintf("%s %s", formatNumber(value), chart.ValueUnit)
}

func formatNumber(value float64) string {
	if value == math.Trunc(value) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.2f", value)
}
