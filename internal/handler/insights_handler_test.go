package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/lernix/lernix-web/internal/dto"
)

func seedInsights(h *harness) {
	h.backend.on("GET /courses/", http.StatusOK,
		`[{"id":7,"title":"Algorithms","description":"Graphs"},{"id":8,"title":"Databases","description":""}]`)
	h.backend.on("GET /courses/7/chapter", http.StatusOK,
		`[{"id":1,"course_id":7,"chapter_title":"Intro"},{"id":2,"course_id":7,"chapter_title":"Graphs"}]`)
	h.backend.on("GET /insights/activity-time?summary", http.StatusOK,
		`[{"chapter_id":1,"chapter_name":"Intro","time_spent_seconds":90}]`)
	h.backend.on("GET /insights/activity-time?ask", http.StatusOK,
		`[{"chapter_id":1,"chapter_name":"Intro","time_spent_seconds":30}]`)
	h.backend.on("GET /insights/activity-time?mcq", http.StatusOK,
		`[{"chapter_id":2,"chapter_name":"Graphs","time_spent_seconds":120}]`)
	h.backend.on("GET /insights/activity-time?view_content", http.StatusOK,
		`[{"chapter_id":2,"chapter_name":"Graphs","time_spent_seconds":45}]`)
	h.backend.on("GET /insights/mcq-attempts", http.StatusOK,
		`[{"chapter_id":1,"chapter_name":"Intro","attempts":0,"avg_score":0},{"chapter_id":2,"chapter_name":"Graphs","attempts":3,"avg_score":75}]`)
}

func TestInsightsDashboardMatchesSchema(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/api/v1/insights/dashboard", nil, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	payload := decodeEnvelope(t, resp)

	schema, err := jsonschema.Compile("testdata/insights_dashboard.schema.json")
	require.NoError(t, err)
	var decoded interface{}
	require.NoError(t, json.Unmarshal(payload.Data, &decoded))
	require.NoError(t, schema.Validate(decoded))

	var dashboard dto.InsightsDashboard
	require.NoError(t, json.Unmarshal(payload.Data, &dashboard))
	require.NotNil(t, dashboard.Course)
	require.Equal(t, 7, dashboard.Course.ID)
	require.Empty(t, dashboard.Error)

	totals := make(map[string]float64)
	for _, point := range dashboard.TotalChart.Points {
		totals[point.Label] = point.Value
	}
	require.Equal(t, map[string]float64{"Intro": 2, "Graphs": 3}, totals)

	require.True(t, dashboard.AttemptsTable.Available)
	require.Len(t, dashboard.AttemptsTable.Rows, 1)
	require.Equal(t, "Graphs", dashboard.AttemptsTable.Rows[0].ChapterName)
	require.Equal(t, "75%", dashboard.AttemptsTable.Rows[0].AvgScoreLabel)
}

func TestInsightsSelectUnknownCourse(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	id := h.newSession(t)

	resp := h.doJSON(t, http.MethodPost, "/api/v1/insights/select", dto.SelectCourseRequest{CourseID: 99}, withSession(id))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = h.doJSON(t, http.MethodPost, "/api/v1/insights/select", dto.SelectCourseRequest{}, withSession(id))
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestInsightsCoursesMarkSelection(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	h.backend.on("GET /courses/8/chapter", http.StatusOK, `[]`)
	id := h.newSession(t)

	resp := h.doJSON(t, http.MethodPost, "/api/v1/insights/select", dto.SelectCourseRequest{CourseID: 8}, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/v1/insights/courses", nil, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var options []dto.CourseOption
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &options))
	require.Equal(t, []dto.CourseOption{
		{ID: 7, Title: "Algorithms"},
		{ID: 8, Title: "Databases", Selected: true},
	}, options)
}

func TestInsightsTotalTimeInMinutes(t *testing.T) {
	h := newHarness(t)
	h.backend.on("GET /insights/total-time", http.StatusOK,
		`[{"course_id":7,"course_title":"Algorithms","total_time_spent_seconds":150}]`)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/api/v1/insights/total-time", nil, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var totals []dto.CourseTimeResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &totals))
	require.Equal(t, []dto.CourseTimeResponse{{CourseID: 7, CourseTitle: "Algorithms", Minutes: 3}}, totals)
}

func TestInsightsWithoutAttemptTracking(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	h.backend.on("GET /insights/mcq-attempts", http.StatusNotFound, `{"detail":"Not Found"}`)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/api/v1/insights/dashboard", nil, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dashboard dto.InsightsDashboard
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &dashboard))
	require.False(t, dashboard.AttemptsTable.Available)
	require.Empty(t, dashboard.AttemptsTable.Rows)
	require.Equal(t, "MCQ attempt tracking is not available yet.", dashboard.AttemptsTable.EmptyLabel)
	require.Empty(t, dashboard.Error)
}

func TestInsightsFetchFailureKeepsCourse(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	h.backend.on("GET /insights/activity-time?ask", http.StatusInternalServerError, `{"detail":"database offline"}`)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/api/v1/insights/dashboard", nil, withSession(id))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dashboard dto.InsightsDashboard
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &dashboard))
	require.NotNil(t, dashboard.Course)
	require.Equal(t, 7, dashboard.Course.ID)
	require.Equal(t, "database offline", dashboard.Error)
	require.Empty(t, dashboard.TotalChart.Points)
}

func TestInsightsPageRendersHTML(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/insights?course_id=7", nil, withSession(id), withHeader("Accept", "text/html"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Total Time Spent")
	require.Contains(t, string(body), "Algorithms")
}

func TestInsightsPageUnknownCourseFallsBack(t *testing.T) {
	h := newHarness(t)
	seedInsights(h)
	id := h.newSession(t)

	resp := h.do(t, http.MethodGet, "/insights?course_id=99", nil, withSession(id), withHeader("Accept", "text/html"))
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Course not found")
	require.Contains(t, string(body), "Algorithms")
}

func TestInsightsPageRedirectsWithoutSession(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/insights", nil, withHeader("Accept", "text/html"))
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
	require.Zero(t, h.backend.callCount("GET /courses/"))
}
