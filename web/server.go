package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"screenusage/entity"
	"screenusage/gemini"
	"screenusage/manager"
	"screenusage/query"
)

// UsageService is the read side of the usage aggregator.
type UsageService interface {
	AppUsage(ctx context.Context, r query.TimeRange) []entity.AppUsage
	WindowUsage(ctx context.Context, app string, r query.TimeRange) []entity.WindowUsage
	Summary(ctx context.Context, r query.TimeRange) (entity.UsageSummary, []entity.AppUsage)
	VideoCategories(ctx context.Context, app string, r query.TimeRange) []entity.VideoCategory
}

type BreakdownService interface {
	DomainBreakdown(ctx context.Context, app string, r query.TimeRange) []entity.DomainBreakdown
}

type Analyst interface {
	AnalyzeBehavior(ctx context.Context, data gemini.UsageData, goals []entity.UserGoal, r query.TimeRange) (entity.BehavioralInsight, bool)
}

type GoalService interface {
	List() []entity.UserGoal
	Add(goal entity.UserGoal) (entity.UserGoal, error)
	Remove(id string) (bool, error)
}

type Deps struct {
	Usage     UsageService
	Breakdown BreakdownService
	Analyst   Analyst
	Goals     GoalService
	Metrics   *Metrics
	Log       *slog.Logger
	// AccessLog receives one Apache-style line per request. Defaults to stdout.
	AccessLog io.Writer
	// RecorderRunning reports whether the screen recorder process is alive.
	RecorderRunning func() bool
	// StoreMode names how frames are read, shown on /health.
	StoreMode string
}

type Server struct {
	Deps
	router *mux.Router
}

// browserApps are the apps whose windows are split into video categories.
// Short names only match a whole word of the app name.
var browserApps = []string{"chrome", "firefox", "safari", "edge", "msedge", "arc", "brave"}

func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.AccessLog == nil {
		d.AccessLog = os.Stdout
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	s := &Server{Deps: d, router: mux.NewRouter()}

	r := s.router
	r.Use(s.Metrics.Middleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/usage", s.handleUsage).Methods(http.MethodGet)
	api.HandleFunc("/breakdown", s.handleBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals", s.handleDeleteGoal).Methods(http.MethodDelete)
	api.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)
	api.HandleFunc("/ai-analysis", s.handleAnalysis).Methods(http.MethodPost)

	return s
}

// Handler is the router wrapped with the access log.
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(s.AccessLog, s.router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Info("http_listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Log.Info("http_shutdown", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func timeRangeParam(r *http.Request) query.TimeRange {
	return query.ParseTimeRange(r.URL.Query().Get("timeRange"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	recorder := "unknown"
	if s.RecorderRunning != nil {
		recorder = "stopped"
		if s.RecorderRunning() {
			recorder = "running"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"recorder": recorder,
		"store":    s.StoreMode,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	tr := timeRangeParam(r)
	if app := strings.TrimSpace(r.URL.Query().Get("app")); app != "" {
		writeJSON(w, http.StatusOK, map[string]any{"windows": s.Usage.WindowUsage(r.Context(), app, tr)})
		return
	}
	summary, apps := s.Usage.Summary(r.Context(), tr)
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "apps": apps})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	app := strings.TrimSpace(r.URL.Query().Get("app"))
	if app == "" {
		writeError(w, http.StatusBadRequest, "App name is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"breakdown": s.Breakdown.DomainBreakdown(r.Context(), app, timeRangeParam(r)),
	})
}

func isBrowser(app string) bool {
	lower := strings.ToLower(app)
	words := strings.Fields(lower)
	for _, b := range browserApps {
		if len(b) > 4 && strings.Contains(lower, b) {
			return true
		}
		for _, w := range words {
			if w == b {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	app := strings.TrimSpace(r.URL.Query().Get("app"))
	categories := []entity.VideoCategory{}
	if isBrowser(app) {
		categories = s.Usage.VideoCategories(r.Context(), app, timeRangeParam(r))
	}
	writeJSON(w, http.StatusOK, map[string]any{"app": app, "categories": categories})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"goals": s.Goals.List()})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var body entity.UserGoal
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid goal payload")
		return
	}
	goal, err := s.Goals.Add(body)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidGoal) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Log.Error("goal_create_failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Goal ID required")
		return
	}
	if _, err := s.Goals.Remove(id); err != nil {
		s.Log.Error("goal_delete_failed", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type analysisRequest struct {
	TimeRange string            `json:"timeRange"`
	Goals     []entity.UserGoal `json:"goals"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var body analysisRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid analysis payload")
			return
		}
	}
	goals := body.Goals
	if len(goals) == 0 {
		goals = s.Goals.List()
	}
	if len(goals) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "No goals set",
			"message": "Please set your goals first to get AI analysis",
		})
		return
	}

	tr := query.ParseTimeRange(body.TimeRange)
	apps := s.Usage.AppUsage(r.Context(), tr)
	data := gemini.UsageData{Apps: apps, Categories: []entity.VideoCategory{}}
	for _, a := range apps {
		data.TotalScreenTime += a.Duration
	}
	// Content categories come from the busiest browser.
	for _, a := range apps {
		if isBrowser(a.Name) {
			data.Categories = s.Usage.VideoCategories(r.Context(), a.Name, tr)
			break
		}
	}

	insight, fromModel := s.Analyst.AnalyzeBehavior(r.Context(), data, goals, tr)
	s.Metrics.Analyzed(fromModel)
	writeJSON(w, http.StatusOK, insight)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

var _ GoalService = (*manager.GoalStore)(nil)
