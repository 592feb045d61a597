// Package adapthttp is the driving HTTP adapter: JSON API plus the static client.
package adapthttp

import (
	"net/http"
	"time"

	"caltrack/internal/app"
	"caltrack/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultRequestTimeout leaves room for a slow vision model call.
const DefaultRequestTimeout = 90 * time.Second

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	stats   *app.StatsService
	logs    *app.LogService
	photos  *app.PhotoService
	weight  *app.WeightService
	roster  *domain.Roster
	logger  *log.Logger
	webDir  string
	timeout time.Duration
}

// New creates a Server wired to the given application services.
func New(stats *app.StatsService, logs *app.LogService, photos *app.PhotoService, weight *app.WeightService,
	roster *domain.Roster, logger *log.Logger, webDir string) *Server {
	return &Server{
		stats:   stats,
		logs:    logs,
		photos:  photos,
		weight:  weight,
		roster:  roster,
		logger:  logger,
		webDir:  webDir,
		timeout: DefaultRequestTimeout,
	}
}

// WithRequestTimeout overrides the per-request deadline.
func (s *Server) WithRequestTimeout(d time.Duration) *Server {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.RequestID, s.loggingMiddleware, middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(withNoCache)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Get("/users", s.handleUsers)
		r.Get("/stats", s.handleStats)

		r.Post("/log/photo", s.handlePhotoLog)
		r.Post("/log/manual", s.handleManualLog)
		r.Delete("/log/{id}", s.handleDeleteLog)

		r.Get("/weight", s.handleWeightLatest)
		r.Post("/weight", s.handleWeight)
	})
	r.Handle("/*", spaFromDisk(s.webDir))

	return r
}
