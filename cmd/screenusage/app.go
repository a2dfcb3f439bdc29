package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"screenusage/config"
	"screenusage/gemini"
	"screenusage/manager"
	"screenusage/query"
	"screenusage/usage"
	"screenusage/web"
)

// app holds every long-lived component, built once per command.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	metrics  *web.Metrics
	agg      *usage.Aggregator
	composer *usage.Composer
	analyzer *gemini.Analyzer
	goals    *manager.GoalStore
	closers  []io.Closer
}

func newLogger(level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: newLogger(cfg.LogLevel), metrics: web.NewMetrics()}
	slog.SetDefault(a.log)

	src, err := a.frameSource()
	if err != nil {
		a.Close()
		return nil, err
	}

	state, err := query.InitDatabase(cfg.Screenpipe.DBDriver, cfg.StateDBPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, state)
	if a.goals, err = manager.NewGoalStore(state); err != nil {
		a.Close()
		return nil, err
	}

	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Gemini.APIKey == "" {
		a.log.Warn("gemini_not_configured", "hint", "set GEMINI_API_KEY to enable analysis and re-categorization")
	}
	a.analyzer = gemini.NewAnalyzer(client, a.log)

	a.agg = usage.NewAggregator(src, usage.WithLogger(a.log), usage.WithRecorder(a.metrics))
	var recat usage.Recategorizer
	if cfg.Gemini.APIKey != "" {
		recat = gemini.NewRecategorizer(client)
	}
	a.composer = usage.NewComposer(a.agg, recat, cfg.VideoOtherMin, cfg.DomainOtherMin)
	return a, nil
}

func (a *app) frameSource() (query.FrameSource, error) {
	switch a.cfg.Screenpipe.Mode {
	case config.ModeSQLite:
		db, err := query.OpenFrames(a.cfg.Screenpipe.DBDriver, a.cfg.Screenpipe.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		a.log.Info("frame_source", "mode", config.ModeSQLite, "path", a.cfg.Screenpipe.DBPath)
		return query.NewFrames(db), nil
	case config.ModeHTTP:
		a.log.Info("frame_source", "mode", config.ModeHTTP, "url", a.cfg.Screenpipe.APIURL)
		return query.NewFrames(query.NewRawSQLClient(a.cfg.Screenpipe.APIURL, nil)), nil
	}
	return nil, fmt.Errorf("unknown screenpipe mode %q", a.cfg.Screenpipe.Mode)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close_failed", "error", err.Error())
		}
	}
	a.closers = nil
}
