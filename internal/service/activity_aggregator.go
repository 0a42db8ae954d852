package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lernix/lernix-web/internal/models"
)

// ActivitySeries holds the raw per-kind records of one course, in seconds.
type ActivitySeries map[models.ActivityKind][]models.ActivityTimeRecord

// ActivityAggregate is the minute-normalised view of a course's study time.
type ActivityAggregate struct {
	Series map[models.ActivityKind][]models.ActivityTimePoint
	Totals []models.ChapterTimeTotal
}

// SecondsToMinutes rounds half up, matching JavaScript's Math.round.
func SecondsToMinutes(seconds float64) int64 {
	return int64(math.Floor(seconds/60 + 0.5))
}

// ActivityTimeAggregator fetches the four activity series and joins them by chapter.
type ActivityTimeAggregator struct {
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewActivityTimeAggregator constructs the aggregator.
func NewActivityTimeAggregator(logger zerolog.Logger) *ActivityTimeAggregator {
	return &ActivityTimeAggregator{
		logger: logger.With().Str("component", "activity_aggregator").Logger(),
		tracer: otel.Tracer("github.com/lernix/lernix-web/internal/service/activity"),
	}
}

// Fetch retrieves every series for courseID and builds the aggregate keyed by chapters.
func (a *ActivityTimeAggregator) Fetch(ctx context.Context, src ActivitySource, courseID int, chapters []models.Chapter) (ActivityAggregate, error) {
	series, err := a.FetchSeries(ctx, src, courseID)
	if err != nil {
		return ActivityAggregate{}, err
	}
	return BuildActivityAggregate(series, chapters), nil
}

// FetchSeries issues one request per activity kind concurrently. Any failure
// fails the whole fetch.
func (a *ActivityTimeAggregator) FetchSeries(ctx context.Context, src ActivitySource, courseID int) (ActivitySeries, error) {
	ctx, span := a.tracer.Start(ctx, "insights.activity_series", trace.WithAttributes(
		attribute.Int("course.id", courseID),
	))
	defer span.End()

	results := make([][]models.ActivityTimeRecord, len(models.ActivityKinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range models.ActivityKinds {
		group.Go(func() error {
			records, err := src.ActivityTime(groupCtx, courseID, kind)
			if err != nil {
				return fmt.Errorf("fetch %s activity time: %w", kind, err)
			}
			results[i] = records
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		a.logger.Warn().Err(err).Int("course_id", courseID).Msg("activity series fetch failed")
		return nil, err
	}

	series := make(ActivitySeries, len(models.ActivityKinds))
	for i, kind := range models.ActivityKinds {
		series[kind] = results[i]
	}
	span.SetStatus(codes.Ok, "fetched")
	return series, nil
}

// BuildActivityAggregate converts every series to minutes and derives per-chapter totals.
func BuildActivityAggregate(series ActivitySeries, chapters []models.Chapter) ActivityAggregate {
	aggregate := ActivityAggregate{
		Series: make(map[models.ActivityKind][]models.ActivityTimePoint, len(models.ActivityKinds)),
		Totals: ComputeChapterTotals(series, chapters),
	}
	for _, kind := range models.ActivityKinds {
		aggregate.Series[kind] = NormalizeSeries(series[kind], chapters)
	}
	return aggregate
}

// NormalizeSeries converts records to minutes in chapter-list order. Records
// for chapters outside the list follow in the order the backend sent them.
func NormalizeSeries(records []models.ActivityTimeRecord, chapters []models.Chapter) []models.ActivityTimePoint {
	position := make(map[int]int, len(chapters))
	for i, chapter := range chapters {
		if _, seen := position[chapter.ID]; !seen {
			position[chapter.ID] = i
		}
	}

	buckets := make([][]models.ActivityTimeRecord, len(chapters))
	var unknown []models.ActivityTimeRecord
	for _, record := range records {
		if idx, ok := position[record.ChapterID]; ok {
			buckets[idx] = append(buckets[idx], record)
			continue
		}
		unknown = append(unknown, record)
	}

	points := make([]models.ActivityTimePoint, 0, len(records))
	for idx, bucket := range buckets {
		for _, record := range bucket {
			points = append(points, toPoint(record, chapters[idx]))
		}
	}
	for _, record := range unknown {
		points = append(points, models.ActivityTimePoint{
			ChapterID:   record.ChapterID,
			ChapterName: record.ChapterName,
			Minutes:     SecondsToMinutes(record.TimeSpentSeconds),
		})
	}
	return points
}

func toPoint(record models.ActivityTimeRecord, chapter models.Chapter) models.ActivityTimePoint {
	name := record.ChapterName
	if name == "" {
		name = chapter.Name()
	}
	return models.ActivityTimePoint{
		ChapterID:   record.ChapterID,
		ChapterName: name,
		Minutes:     SecondsToMinutes(record.TimeSpentSeconds),
	}
}

// ComputeChapterTotals sums raw seconds across every series per known chapter
// and converts the sum once. Chapters without records total zero.
func ComputeChapterTotals(series ActivitySeries, chapters []models.Chapter) []models.ChapterTimeTotal {
	seconds := make(map[int]float64, len(chapters))
	for _, chapter := range chapters {
		seconds[chapter.ID] = 0
	}

	for _, kind := range models.ActivityKinds {
		for _, record := range series[kind] {
			if _, known := seconds[record.ChapterID]; known {
				seconds[record.ChapterID] += record.TimeSpentSeconds
			}
		}
	}

	totals := make([]models.ChapterTimeTotal, 0, len(chapters))
	emitted := make(map[int]struct{}, len(chapters))
	for _, chapter := range chapters {
		if _, dup := emitted[chapter.ID]; dup {
			continue
		}
		emitted[chapter.ID] = struct{}{}
		totals = append(totals, models.ChapterTimeTotal{
			ChapterID:   chapter.ID,
			ChapterName: chapter.Name(),
			Total:       SecondsToMinutes(seconds[chapter.ID]),
		})
	}
	return totals
}
