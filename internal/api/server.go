package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/figdoc/internal/config"
	"github.com/dgallion1/figdoc/internal/enhance"
	"github.com/dgallion1/figdoc/internal/pipeline"
	"github.com/dgallion1/figdoc/internal/storage"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Jobs is the part of the pipeline the handlers drive.
type Jobs interface {
	Submit(job *pipeline.Job) error
	GetJob(id string) *pipeline.Job
	QueueDepth() int
}

// Server is the HTTP API server for figdoc.
type Server struct {
	router chi.Router
	jobs   Jobs
	store  storage.Store
	stats  *enhance.LLMStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(jobs Jobs, store storage.Store, stats *enhance.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		jobs:  jobs,
		store: store,
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/reports", s.handleCreateReport)
		r.Get("/api/reports/{jobID}", s.handleReportStatus)
		r.Get("/api/download/{filename}", s.handleDownload)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}
