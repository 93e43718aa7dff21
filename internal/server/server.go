// Package server provides the HTTP serving layer for the dashboard.
// It exposes the render-trigger interface and the selection-control data
// interface over JSON, plus the embedded single-page dashboard itself.
//
// The loaded table is shared read-only across requests without locking;
// no writer exists after load.
package server

import (
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/board"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/config"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/dataset"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/metrics"
)

//go:embed assets/index.html
var indexPage []byte

// Server serves the dashboard and its JSON API over a loaded table.
type Server struct {
	cfg    *config.Config
	table  *dataset.Table
	router *mux.Router
}

// New creates a server over the given configuration and loaded table.
func New(cfg *config.Config, table *dataset.Table) *Server {
	s := &Server{
		cfg:    cfg,
		table:  table,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the fully wired HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = MetricsMiddleware(h)
	h = LoggingMiddleware(h)
	h = CORSMiddleware(h)
	h = RequestIDMiddleware(h)
	return h
}

// routes registers all endpoints.
func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/rows", s.handleRows).Methods(http.MethodGet)
	s.router.HandleFunc("/api/countries", s.handleCountries).Methods(http.MethodGet)
	s.router.HandleFunc("/api/achievement-types", s.handleAchievementTypes).Methods(http.MethodGet)
}

// handleIndex serves the embedded dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondMessage(w, "ok")
}

// rowsResponse is the payload of /api/rows.
type rowsResponse struct {
	// Columns is the fixed projection order for table rendering.
	Columns []string `json:"columns"`
	// Rows are the display rows, one field-to-value mapping per row.
	Rows []board.DisplayRow `json:"rows"`
	// Truncated is true when the row cap cut off results.
	Truncated bool `json:"truncated,omitempty"`
}

// handleRows is the render-trigger interface: each request triggers exactly
// one render against the immutable table.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := board.Criteria{
		Country:         q.Get("country"),
		AchievementType: q.Get("achievementType"),
		Where:           q.Get("where"),
	}
	renderCtx := logger.RenderContext{
		RequestID:       RequestID(r.Context()),
		Country:         criteria.Country,
		AchievementType: criteria.AchievementType,
		Where:           criteria.Where,
	}
	logger.LogRenderStart(renderCtx)

	start := time.Now()
	rows, err := board.Render(s.table, criteria)
	duration := time.Since(start)

	metrics.RendersTotal.Inc()
	metrics.RenderDuration.Observe(duration.Seconds())

	if err != nil {
		if errors.Is(err, board.ErrInvalidExpression) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sentinel := len(rows) == 1 && rows[0]["No."] == board.NA
	if sentinel {
		metrics.SentinelRendersTotal.Inc()
	} else {
		metrics.RowsEmittedTotal.Add(float64(len(rows)))
	}

	resp := rowsResponse{Columns: board.Columns, Rows: rows}
	if len(resp.Rows) > s.cfg.MaxPageSize {
		resp.Rows = resp.Rows[:s.cfg.MaxPageSize]
		resp.Truncated = true
	}

	logger.LogRenderEnd(renderCtx, len(resp.Rows), sentinel, duration)
	respondSuccess(w, resp)
}

// handleCountries is the selection-control data interface for countries.
func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, s.table.Countries())
}

// handleAchievementTypes is the selection-control data interface for
// achievement types.
func (s *Server) handleAchievementTypes(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, s.table.AchievementTypes())
}
