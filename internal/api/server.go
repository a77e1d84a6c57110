// Package api implements the HTTP layer for the ergonomic analysis service.
// Handlers are methods on *Server. Each handler file is responsible for one
// operation group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ergolab/human-factors-backend/internal/analysis"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// MaxUploadBytes caps the total size of a multipart upload.
	MaxUploadBytes int64
}

// defaultMaxUpload applies when Config.MaxUploadBytes is zero. Batch uploads
// carry several images, so the cap is per request, not per file.
const defaultMaxUpload int64 = 64 << 20

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// analysis runs the estimation → metrics → insights pipeline.
	analysis *analysis.Service

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(svc *analysis.Service, cfg Config, logger *slog.Logger) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	s := &Server{
		analysis: svc,
		cfg:      cfg,
		logger:   logger,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	// Pose estimation plus a narrative round trip can run long on batches.
	r.Use(middleware.Timeout(5 * time.Minute))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	// ── Analysis ──────────────────────────────────────────────────────────────
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/batch-analyze", s.handleBatchAnalyze)
	r.Post("/compare-postures", s.handleComparePostures)

	return r
}
