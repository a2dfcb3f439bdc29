package usage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"screenusage/entity"
	"screenusage/query"
)

var errUnavailable = errors.New("connection refused")

type fakeSource struct {
	apps    []query.AppRow
	windows []query.WindowRow
	total   float64
	videos  []entity.Video
	err     error

	mu      sync.Mutex
	windowS []query.Window
}

func (f *fakeSource) seen(w query.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windowS = append(f.windowS, w)
}

func (f *fakeSource) AppRows(_ context.Context, w query.Window) ([]query.AppRow, error) {
	f.seen(w)
	return f.apps, f.err
}

func (f *fakeSource) WindowRows(_ context.Context, _ string, w query.Window, _ int) ([]query.WindowRow, error) {
	f.seen(w)
	return f.windows, f.err
}

func (f *fakeSource) TotalSeconds(_ context.Context, w query.Window) (float64, error) {
	f.seen(w)
	return f.total, f.err
}

func (f *fakeSource) VideoRows(_ context.Context, _ string, w query.Window) ([]entity.Video, error) {
	f.seen(w)
	return f.videos, f.err
}

type fakeRecorder struct {
	mu        sync.Mutex
	failures  map[string]int
	recatOK   int
	recatFail int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{failures: map[string]int{}}
}

func (r *fakeRecorder) UpstreamFailure(collaborator, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[collaborator+"/"+op]++
}

func (r *fakeRecorder) Recategorized(_ string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.recatOK++
	} else {
		r.recatFail++
	}
}

type fakeRecategorizer struct {
	mu     sync.Mutex
	calls  [][]string
	assign func(titles []string) []string
	err    error
}

func (f *fakeRecategorizer) Recategorize(_ context.Context, titles []string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), titles...))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.assign(titles), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2024, 10, 19, 15, 30, 0, 0, time.FixedZone("CEST", 2*3600))
}

func newTestAggregator(src query.FrameSource, rec Recorder) *Aggregator {
	return NewAggregator(src, WithLogger(quietLogger()), WithRecorder(rec), WithClock(fixedNow))
}

func windowRow(title string, seconds float64) query.WindowRow {
	return query.WindowRow{WindowName: title, FrameCount: int(seconds / 2), DurationSeconds: seconds}
}
