// Package server serves generated reports and the run history over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/database"
)

type Server struct {
	reports   *artifacts.Manager
	db        database.Database // nil when history is disabled
	trendRuns int
	logger    *zap.Logger
}

func NewServer(reports *artifacts.Manager, db database.Database, trendRuns int, logger *zap.Logger) *Server {
	return &Server{
		reports:   reports,
		db:        db,
		trendRuns: trendRuns,
		logger:    logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/", s.handleLatest)
	r.Get("/reports/*", s.handleReportFile)

	// API routes
	r.Get("/api/v1/summary", s.handleSummaryAPI)
	r.Get("/api/v1/trend", s.handleTrendAPI)

	return r
}

// cors allows any origin so reports can be fetched from local tooling.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	path, err := s.reports.Latest("html")
	if err != nil {
		s.logger.Error("Failed to list reports", zap.Error(err))
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	if path == "" {
		http.Error(w, "No HTML report found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/reports/"+filepath.Base(path), http.StatusFound)
}

func (s *Server) handleReportFile(w http.ResponseWriter, r *http.Request) {
	fpath, err := s.reports.ResolveReport(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	info, err := os.Stat(fpath)
	if err != nil || !info.Mode().IsRegular() {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, fpath)
}

func (s *Server) handleSummaryAPI(w http.ResponseWriter, r *http.Request) {
	path, err := s.reports.Latest("json")
	if err != nil {
		s.logger.Error("Failed to list reports", zap.Error(err))
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}
	if path == "" {
		http.Error(w, "No JSON report found", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("Failed to read report", zap.String("path", path), zap.Error(err))
		http.Error(w, "Failed to read report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleTrendAPI(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "History is not configured", http.StatusServiceUnavailable)
		return
	}

	points, err := s.db.GetPassRateTrend(r.Context(), s.trendRuns)
	if err != nil {
		s.logger.Error("Failed to load trend", zap.Error(err))
		http.Error(w, "Failed to load trend", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
