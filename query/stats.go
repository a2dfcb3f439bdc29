package query

import (
	"context"
	"fmt"

	"screenusage/entity"
)

// MaxWindowRows caps the per-app window listing.
const MaxWindowRows = 50

type AppRow struct {
	AppName         string  `db:"app_name" json:"app_name"`
	FrameCount      int     `db:"frame_count" json:"frame_count"`
	DurationSeconds float64 `db:"duration_seconds" json:"duration_seconds"`
}

type WindowRow struct {
	WindowName      string  `db:"window_name" json:"window_name"`
	FrameCount      int     `db:"frame_count" json:"frame_count"`
	DurationSeconds float64 `db:"duration_seconds" json:"duration_seconds"`
}

type totalRow struct {
	TotalSeconds float64 `db:"total_seconds" json:"total_seconds"`
}

type videoRow struct {
	WindowName      string  `db:"window_name" json:"window_name"`
	AllText         string  `db:"all_text" json:"all_text"`
	FrameCount      int     `db:"frame_count" json:"frame_count"`
	DurationSeconds float64 `db:"duration_seconds" json:"duration_seconds"`
}

// FrameSource answers the grouped frame queries the usage pipeline needs.
type FrameSource interface {
	AppRows(ctx context.Context, w Window) ([]AppRow, error)
	WindowRows(ctx context.Context, app string, w Window, limit int) ([]WindowRow, error)
	TotalSeconds(ctx context.Context, w Window) (float64, error)
	VideoRows(ctx context.Context, app string, w Window) ([]entity.Video, error)
}

// rowSelector runs a query and decodes every row into dest, a pointer to a slice.
type rowSelector interface {
	selectRows(ctx context.Context, dest any, q string, args ...any) error
}

// Frames issues the frame queries against either the sqlite file or the recorder's raw_sql endpoint.
type Frames struct {
	r rowSelector
}

func NewFrames(r rowSelector) *Frames {
	return &Frames{r: r}
}

// AppRows returns per-application frame totals, longest first.
func (f *Frames) AppRows(ctx context.Context, w Window) ([]AppRow, error) {
	cond, args := w.Predicate("f.timestamp")
	q := `
	SELECT f.app_name AS app_name,
	       COUNT(*) AS frame_count,
	       COUNT(*) * 2.0 AS duration_seconds
	FROM frames f
	WHERE ` + cond + `
	  AND f.app_name IS NOT NULL
	  AND f.app_name != ''
	GROUP BY f.app_name
	ORDER BY duration_seconds DESC, f.app_name`
	rows := []AppRow{}
	if err := f.r.selectRows(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("AppRows: %w", err)
	}
	return rows, nil
}

// WindowRows returns per-window frame totals for one application, longest first.
func (f *Frames) WindowRows(ctx context.Context, app string, w Window, limit int) ([]WindowRow, error) {
	if limit <= 0 || limit > MaxWindowRows {
		limit = MaxWindowRows
	}
	cond, args := w.Predicate("f.timestamp")
	q := `
	SELECT f.window_name AS window_name,
	       COUNT(*) AS frame_count,
	       COUNT(*) * 2.0 AS duration_seconds
	FROM frames f
	WHERE ` + cond + `
	  AND f.app_name = ?
	  AND f.window_name IS NOT NULL
	  AND f.window_name != ''
	GROUP BY f.window_name
	ORDER BY duration_seconds DESC, f.window_name
	LIMIT ?`
	args = append(args, app, limit)
	rows := []WindowRow{}
	if err := f.r.selectRows(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("WindowRows: %w", err)
	}
	return rows, nil
}

// TotalSeconds returns the screen time of every frame in the window, whatever the app.
func (f *Frames) TotalSeconds(ctx context.Context, w Window) (float64, error) {
	cond, args := w.Predicate("f.timestamp")
	q := `
	SELECT COUNT(*) * 2.0 AS total_seconds
	FROM frames f
	WHERE ` + cond
	rows := []totalRow{}
	if err := f.r.selectRows(ctx, &rows, q, args...); err != nil {
		return 0, fmt.Errorf("TotalSeconds: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalSeconds, nil
}

// VideoRows returns YouTube pages watched in app with the OCR text captured on them.
// Pages seen for five frames or fewer are skipped.
func (f *Frames) VideoRows(ctx context.Context, app string, w Window) ([]entity.Video, error) {
	cond, args := w.Predicate("f.timestamp")
	q := `
	SELECT f.window_name AS window_name,
	       COALESCE(GROUP_CONCAT(DISTINCT o.text), '') AS all_text,
	       COUNT(DISTINCT f.id) AS frame_count,
	       COUNT(DISTINCT f.id) * 2.0 AS duration_seconds
	FROM frames f
	JOIN ocr_text o ON f.id = o.frame_id
	WHERE ` + cond + `
	  AND f.app_name = ?
	  AND f.window_name LIKE '%youtube%'
	GROUP BY f.window_name
	HAVING frame_count > 5
	ORDER BY duration_seconds DESC, f.window_name
	LIMIT 100`
	args = append(args, app)
	rows := []videoRow{}
	if err := f.r.selectRows(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("VideoRows: %w", err)
	}
	videos := make([]entity.Video, 0, len(rows))
	for _, r := range rows {
		videos = append(videos, entity.Video{
			WindowName: r.WindowName,
			Text:       r.AllText,
			FrameCount: r.FrameCount,
			Duration:   r.DurationSeconds,
		})
	}
	return videos, nil
}
