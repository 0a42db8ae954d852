package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lernix/lernix-web/internal/backend"
	"github.com/lernix/lernix-web/internal/models"
)

func introAdvanced() []models.Chapter {
	return []models.Chapter{
		{ID: 1, CourseID: 7, ChapterTitle: "Intro"},
		{ID: 2, CourseID: 7, ChapterTitle: "Advanced"},
	}
}

func TestSecondsToMinutesRoundsHalfUp(t *testing.T) {
	cases := map[float64]int64{
		0:    0,
		29:   0,
		30:   1,
		89:   1,
		90:   2,
		180:  3,
		-30:  0,
		-31:  -1,
		-120: -2,
	}
	for seconds, minutes := range cases {
		require.Equal(t, minutes, SecondsToMinutes(seconds), "seconds=%v", seconds)
	}
}

func TestComputeChapterTotalsScenario(t *testing.T) {
	series := ActivitySeries{
		models.ActivitySummary: {{ChapterID: 1, ChapterName: "Intro", TimeSpentSeconds: 120}},
		models.ActivityAsk:     {{ChapterID: 1, ChapterName: "Intro", TimeSpentSeconds: 60}},
	}

	totals := ComputeChapterTotals(series, introAdvanced())
	require.Equal(t, []models.ChapterTimeTotal{
		{ChapterID: 1, ChapterName: "Intro", Total: 3},
		{ChapterID: 2, ChapterName: "Advanced", Total: 0},
	}, totals)
}

func TestComputeChapterTotalsSumsSecondsBeforeRounding(t *testing.T) {
	// Each term rounds to 0 minutes on its own but the sum is 2 minutes.
	series := ActivitySeries{
		models.ActivitySummary:     {{ChapterID: 1, TimeSpentSeconds: 29}},
		models.ActivityAsk:         {{ChapterID: 1, TimeSpentSeconds: 29}},
		models.ActivityMCQ:         {{ChapterID: 1, TimeSpentSeconds: 29}},
		models.ActivityViewContent: {{ChapterID: 1, TimeSpentSeconds: 29}},
	}

	totals := ComputeChapterTotals(series, introAdvanced())
	require.Equal(t, int64(2), totals[0].Total)
	require.Equal(t, int64(0), totals[1].Total)
}

func TestComputeChapterTotalsIgnoresUnknownChapters(t *testing.T) {
	series := ActivitySeries{
		models.ActivityMCQ: {
			{ChapterID: 99, ChapterName: "Deleted", TimeSpentSeconds: 600},
			{ChapterID: 2, ChapterName: "Advanced", TimeSpentSeconds: 300},
		},
	}

	totals := ComputeChapterTotals(series, introAdvanced())
	require.Len(t, totals, 2)
	require.Equal(t, int64(0), totals[0].Total)
	require.Equal(t, int64(5), totals[1].Total)
}

func TestNormalizeSeriesFollowsChapterOrder(t *testing.T) {
	records := []models.ActivityTimeRecord{
		{ChapterID: 99, ChapterName: "Orphan", TimeSpentSeconds: 60},
		{ChapterID: 2, ChapterName: "Advanced", TimeSpentSeconds: 150},
		{ChapterID: 1, ChapterName: "", TimeSpentSeconds: 45},
	}

	points := NormalizeSeries(records, introAdvanced())
	require.Equal(t, []models.ActivityTimePoint{
		{ChapterID: 1, ChapterName: "Intro", Minutes: 1},
		{ChapterID: 2, ChapterName: "Advanced", Minutes: 3},
		{ChapterID: 99, ChapterName: "Orphan", Minutes: 1},
	}, points)
}

func TestNormalizeSeriesEmpty(t *testing.T) {
	points := NormalizeSeries(nil, introAdvanced())
	require.NotNil(t, points)
	require.Empty(t, points)
}

func TestActivityAggregatorFetch(t *testing.T) {
	src := newFakeInsightsSource()
	src.series[7] = ActivitySeries{
		models.ActivitySummary: {{ChapterID: 1, ChapterName: "Intro", TimeSpentSeconds: 120}},
		models.ActivityAsk:     {{ChapterID: 1, ChapterName: "Intro", TimeSpentSeconds: 60}},
	}

	aggregator := NewActivityTimeAggregator(testLogger())
	aggregate, err := aggregator.Fetch(context.Background(), src, 7, introAdvanced())
	require.NoError(t, err)

	for _, kind := range models.ActivityKinds {
		require.Equal(t, 1, src.callCount("activity."+string(kind)))
		require.Contains(t, aggregate.Series, kind)
	}
	require.Equal(t, []models.ActivityTimePoint{{ChapterID: 1, ChapterName: "Intro", Minutes: 2}}, aggregate.Series[models.ActivitySummary])
	require.Empty(t, aggregate.Series[models.ActivityMCQ])
	require.Equal(t, int64(3), aggregate.Totals[0].Total)
	require.Equal(t, int64(0), aggregate.Totals[1].Total)
}

func TestActivityAggregatorFailsWhenAnySeriesFails(t *testing.T) {
	src := newFakeInsightsSource()
	src.activityErr[models.ActivityMCQ] = errors.New("boom")

	aggregator := NewActivityTimeAggregator(testLogger())
	_, err := aggregator.Fetch(context.Background(), src, 7, introAdvanced())
	require.Error(t, err)
	require.Contains(t, err.Error(), "mcq")
}

func TestActivityAggregatorPropagatesUnauthorized(t *testing.T) {
	for _, kind := range models.ActivityKinds {
		t.Run(string(kind), func(t *testing.T) {
			src := newFakeInsightsSource()
			src.activityErr[kind] = unauthorizedErr{}

			aggregator := NewActivityTimeAggregator(testLogger())
			_, err := aggregator.FetchSeries(context.Background(), src, 7)
			require.ErrorIs(t, err, backend.ErrUnauthorized)
		})
	}
}
