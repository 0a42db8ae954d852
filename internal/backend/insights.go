package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lernix/lernix-web/internal/models"
)

// ActivityTime returns the per-chapter seconds spent on one activity kind.
func (c *Client) ActivityTime(ctx context.Context, courseID int, kind models.ActivityKind) ([]models.ActivityTimeRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}

	params := url.Values{}
	params.Set("course_id", strconv.Itoa(courseID))
	params.Set("activity_type", string(kind))

	var records []models.ActivityTimeRecord
	err := c.do(ctx, call{
		operation: "insights.activity_time." + string(kind),
		method:    http.MethodGet,
		path:      "/insights/activity-time",
		params:    params,
	}, &records)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.ActivityTimeRecord{}
	}
	return records, nil
}

// MCQAttempts returns per-chapter quiz attempts. The endpoint is optional:
// when the backend does not expose it the result is absent rather than an error.
func (c *Client) MCQAttempts(ctx context.Context, courseID int) (models.Optional[[]models.MCQAttemptSummary], error) {
	params := url.Values{}
	params.Set("course_id", strconv.Itoa(courseID))

	var attempts []models.MCQAttemptSummary
	err := c.do(ctx, call{
		operation: "insights.mcq_attempts",
		method:    http.MethodGet,
		path:      "/insights/mcq-attempts",
		params:    params,
	}, &attempts)
	if err != nil {
		if IsEndpointMissing(err) {
			return models.Absent[[]models.MCQAttemptSummary](), nil
		}
		return models.Optional[[]models.MCQAttemptSummary]{}, err
	}
	if attempts == nil {
		attempts = []models.MCQAttemptSummary{}
	}
	return models.Some(attempts), nil
}

// TotalTime returns the accumulated study time of every course.
func (c *Client) TotalTime(ctx context.Context) ([]models.CourseTimeTotal, error) {
	var totals []models.CourseTimeTotal
	err := c.do(ctx, call{
		operation: "insights.total_time",
		method:    http.MethodGet,
		path:      "/insights/total-time",
	}, &totals)
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []models.CourseTimeTotal{}
	}
	return totals, nil
}
