package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/russellconstruction9/RRsolutions/internal/branding"
	"github.com/russellconstruction9/RRsolutions/internal/config"
	"github.com/russellconstruction9/RRsolutions/internal/export"
	"github.com/russellconstruction9/RRsolutions/internal/generate"
	"github.com/russellconstruction9/RRsolutions/internal/markdown"
	"github.com/russellconstruction9/RRsolutions/internal/pipeline"
	"github.com/russellconstruction9/RRsolutions/internal/session"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Sessions     session.Store
	// Gemini serves PDF export and call stats. Nil disables both.
	Gemini    *generate.Client
	Converter markdown.Converter
	Branding  branding.Profile
}

// Server is the HTTP API server for docugen.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     session.Store
	gemini       *generate.Client
	pdf          export.PDFRenderer
	conv         markdown.Converter
	brand        branding.Profile
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	conv := deps.Converter
	if conv == nil {
		conv = markdown.LineConverter{}
	}
	s := &Server{
		orchestrator: deps.Orchestrator,
		sessions:     deps.Sessions,
		gemini:       deps.Gemini,
		conv:         conv,
		brand:        deps.Branding,
		log:          log,
		cfg:          cfg,
	}
	if deps.Gemini != nil {
		s.pdf = &pipeline.RetryingRenderer{Renderer: deps.Gemini, Log: log}
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocugenAPIKey, s.log))

		r.Post("/api/estimates", s.handleUploadEstimate)
		r.Get("/api/estimates/{jobID}/status", s.handleEstimateStatus)

		r.Post("/api/responses", s.handleCreateFromResponse)

		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/selected", s.handleSelectDocument)
			r.Get("/documents/{index}", s.handleGetDocument)
			r.Put("/documents/{index}", s.handleUpdateDocument)
			r.Get("/documents/{index}/export/{format}", s.handleExportDocument)
		})

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
