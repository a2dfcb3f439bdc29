package usage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenusage/entity"
	"screenusage/query"
)

func TestAppUsagePercentagesAndOrder(t *testing.T) {
	t.Parallel()
	src := &fakeSource{apps: []query.AppRow{
		{AppName: "Terminal", FrameCount: 10, DurationSeconds: 20},
		{AppName: "Google Chrome", FrameCount: 300, DurationSeconds: 600},
		{AppName: "Slack", FrameCount: 45, DurationSeconds: 90},
		{AppName: "Code", FrameCount: 45, DurationSeconds: 90},
	}}
	apps := newTestAggregator(src, newFakeRecorder()).AppUsage(context.Background(), query.Today)
	require.Len(t, apps, 4)

	var sum float64
	for i, a := range apps {
		sum += a.Percentage
		assert.Equal(t, entity.FrameSeconds(a.FrameCount), a.Duration)
		if i > 0 {
			assert.LessOrEqual(t, a.Duration, apps[i-1].Duration)
		}
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.Equal(t, "Google Chrome", apps[0].Name)
	assert.InDelta(t, 600.0/800*100, apps[0].Percentage, 1e-9)
}

func TestAppUsageEmpty(t *testing.T) {
	t.Parallel()
	apps := newTestAggregator(&fakeSource{}, newFakeRecorder()).AppUsage(context.Background(), query.Week)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
}

func TestAggregatorDegradesOnSourceFailure(t *testing.T) {
	t.Parallel()
	rec := newFakeRecorder()
	agg := newTestAggregator(&fakeSource{err: errUnavailable}, rec)
	ctx := context.Background()

	assert.Equal(t, []entity.AppUsage{}, agg.AppUsage(ctx, query.Today))
	assert.Equal(t, []entity.WindowUsage{}, agg.WindowUsage(ctx, "Google Chrome", query.Today))
	assert.Equal(t, 0.0, agg.TotalScreenTime(ctx, query.Today))
	assert.Equal(t, []entity.VideoCategory{}, agg.VideoCategories(ctx, "Google Chrome", query.Today))

	assert.Equal(t, 1, rec.failures["datastore/app_usage"])
	assert.Equal(t, 1, rec.failures["datastore/window_usage"])
	assert.Equal(t, 1, rec.failures["datastore/total_screen_time"])
	assert.Equal(t, 1, rec.failures["datastore/video_usage"])
}

func TestWindowUsageCappedAndSorted(t *testing.T) {
	t.Parallel()
	var rows []query.WindowRow
	for i := 0; i < 60; i++ {
		rows = append(rows, windowRow(fmt.Sprintf("tab %02d", i), float64(2*(i+1))))
	}
	windows := newTestAggregator(&fakeSource{windows: rows}, newFakeRecorder()).
		WindowUsage(context.Background(), "Google Chrome", query.Today)
	require.Len(t, windows, query.MaxWindowRows)
	assert.Equal(t, "tab 59", windows[0].Title)
	assert.Equal(t, 120.0, windows[0].Duration)
}

func TestSummary(t *testing.T) {
	t.Parallel()
	src := &fakeSource{
		apps: []query.AppRow{
			{AppName: "Google Chrome", FrameCount: 300, DurationSeconds: 600},
			{AppName: "Slack", FrameCount: 45, DurationSeconds: 90},
		},
		total: 720,
	}
	summary, apps := newTestAggregator(src, newFakeRecorder()).Summary(context.Background(), query.Today)
	assert.Len(t, apps, 2)
	assert.Equal(t, 720.0, summary.TotalScreenTime)
	assert.Equal(t, 2, summary.ActiveApps)
	require.NotNil(t, summary.MostUsedApp)
	assert.Equal(t, "Google Chrome", summary.MostUsedApp.Name)
}

func TestSummaryWithoutData(t *testing.T) {
	t.Parallel()
	summary, apps := newTestAggregator(&fakeSource{}, newFakeRecorder()).Summary(context.Background(), query.Today)
	assert.Empty(t, apps)
	assert.Nil(t, summary.MostUsedApp)
	assert.Zero(t, summary.ActiveApps)
}

func TestAggregatorResolvesRangeAgainstClock(t *testing.T) {
	t.Parallel()
	src := &fakeSource{}
	agg := newTestAggregator(src, newFakeRecorder())
	agg.AppUsage(context.Background(), query.Yesterday)

	require.Len(t, src.windowS, 1)
	now := fixedNow()
	midnight := time.Date(2024, 10, 19, 0, 0, 0, 0, now.Location())
	assert.True(t, src.windowS[0].Start.Equal(midnight.AddDate(0, 0, -1)))
	assert.True(t, src.windowS[0].End.Equal(midnight))
}

func TestVideoCategories(t *testing.T) {
	t.Parallel()
	src := &fakeSource{videos: []entity.Video{
		{WindowName: "Premier League Highlights - YouTube", FrameCount: 30, Duration: 60},
		{WindowName: "Some clip - YouTube", Text: "travel vlog", FrameCount: 10, Duration: 20},
	}}
	cats := newTestAggregator(src, newFakeRecorder()).VideoCategories(context.Background(), "Google Chrome", query.Today)
	require.Len(t, cats, 2)
	assert.Equal(t, "Soccer videos", cats[0].Name)
	assert.Equal(t, "Travel videos", cats[1].Name)
}
