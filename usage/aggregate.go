// Package usage turns grouped frame counts into usage figures.
// Every query here is best effort: when the frame source fails the
// caller gets an empty result and the failure is logged and counted.
package usage

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"screenusage/categorize"
	"screenusage/entity"
	"screenusage/query"
)

// Recorder counts upstream failures and external re-categorization outcomes.
type Recorder interface {
	UpstreamFailure(collaborator, op string)
	Recategorized(bucket string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) UpstreamFailure(string, string) {}
func (nopRecorder) Recategorized(string, bool)     {}

type Aggregator struct {
	src query.FrameSource
	log *slog.Logger
	rec Recorder
	now func() time.Time
}

type Option func(*Aggregator)

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) { a.rec = r }
}

// WithClock replaces time.Now when resolving time ranges.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(src query.FrameSource, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, log: slog.Default(), rec: nopRecorder{}, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Aggregator) window(r query.TimeRange) query.Window {
	return r.Window(a.now())
}

func (a *Aggregator) failed(op string, err error, attrs ...any) {
	a.rec.UpstreamFailure("datastore", op)
	a.log.Warn("usage_query_failed", append([]any{"op", op, "error", err.Error()}, attrs...)...)
}

// AppUsage returns time per application, longest first, with each app's share of the total.
func (a *Aggregator) AppUsage(ctx context.Context, r query.TimeRange) []entity.AppUsage {
	rows, err := a.src.AppRows(ctx, a.window(r))
	if err != nil {
		a.failed("app_usage", err, "range", string(r))
		return []entity.AppUsage{}
	}
	return appUsageFromRows(rows)
}

func appUsageFromRows(rows []query.AppRow) []entity.AppUsage {
	var total float64
	for _, row := range rows {
		total += row.DurationSeconds
	}
	apps := make([]entity.AppUsage, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, entity.AppUsage{
			Name:       row.AppName,
			Duration:   row.DurationSeconds,
			Percentage: percent(row.DurationSeconds, total),
			FrameCount: row.FrameCount,
		})
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].Duration > apps[j].Duration })
	return apps
}

// WindowUsage returns time per window title inside app, longest first, at most query.MaxWindowRows entries.
func (a *Aggregator) WindowUsage(ctx context.Context, app string, r query.TimeRange) []entity.WindowUsage {
	rows, err := a.src.WindowRows(ctx, app, a.window(r), query.MaxWindowRows)
	if err != nil {
		a.failed("window_usage", err, "app", app, "range", string(r))
		return []entity.WindowUsage{}
	}
	windows := make([]entity.WindowUsage, 0, len(rows))
	for _, row := range rows {
		windows = append(windows, entity.WindowUsage{Title: row.WindowName, Duration: row.DurationSeconds})
	}
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Duration > windows[j].Duration })
	if len(windows) > query.MaxWindowRows {
		windows = windows[:query.MaxWindowRows]
	}
	return windows
}

// TotalScreenTime returns the seconds of every frame in the range.
func (a *Aggregator) TotalScreenTime(ctx context.Context, r query.TimeRange) float64 {
	total, err := a.src.TotalSeconds(ctx, a.window(r))
	if err != nil {
		a.failed("total_screen_time", err, "range", string(r))
		return 0
	}
	return total
}

// Summary returns the headline figures shown above the app list, and the app list itself.
func (a *Aggregator) Summary(ctx context.Context, r query.TimeRange) (entity.UsageSummary, []entity.AppUsage) {
	apps := a.AppUsage(ctx, r)
	summary := entity.UsageSummary{
		TotalScreenTime: a.TotalScreenTime(ctx, r),
		ActiveApps:      len(apps),
	}
	if len(apps) > 0 {
		summary.MostUsedApp = &entity.MostUsedApp{Name: apps[0].Name, Duration: apps[0].Duration}
	}
	return summary, apps
}

// VideoCategories groups the YouTube pages watched in app by content category.
func (a *Aggregator) VideoCategories(ctx context.Context, app string, r query.TimeRange) []entity.VideoCategory {
	videos, err := a.src.VideoRows(ctx, app, a.window(r))
	if err != nil {
		a.failed("video_usage", err, "app", app, "range", string(r))
		return []entity.VideoCategory{}
	}
	cats := categorize.CategorizeVideos(videos)
	if cats == nil {
		return []entity.VideoCategory{}
	}
	return cats
}

func percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
