package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stride/internal/ingest"
	"github.com/claude/stride/internal/metrics"
	"github.com/claude/stride/internal/plan"
	"github.com/claude/stride/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        *storage.DB
	ingest    *ingest.Provider
	engine    *metrics.Engine
	planner   *plan.Planner
	assembler *plan.Assembler
	log       *slog.Logger
	apiKey    string
	router    chi.Router
	handler   http.Handler
}

// New creates a new Server with all routes configured. Identity defaults
// to the local dev user; call SetTailscale to resolve callers through the
// tailnet instead.
func New(db *storage.DB, provider *ingest.Provider, apiKey string, log *slog.Logger) *Server {
	planner := plan.NewPlanner(plan.DefaultConfig())
	s := &Server{
		db:        db,
		ingest:    provider,
		engine:    metrics.NewEngine(metrics.DefaultConfig()),
		planner:   planner,
		assembler: plan.NewAssembler(planner),
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	s.handler = DevIdentity(s.router)
	return s
}

// SetTailscale switches identity resolution to tailnet whois lookups.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.handler = TailscaleIdentity(lc, s.db)(s.router)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Patch("/api/v1/me/heart-rate", s.handleUpdateHeartRate)

	s.router.Get("/api/v1/activities", s.handleQueryActivities)
	s.router.Get("/api/v1/metrics/current", s.handleCurrentMetrics)
	s.router.Get("/api/v1/metrics/history", s.handleMetricsHistory)
	s.router.Get("/api/v1/metrics/range", s.handleMetricsRange)

	s.router.Route("/api/v1/goals", func(r chi.Router) {
		r.Get("/", s.handleListGoals)
		r.Post("/", s.handleCreateGoal)
		r.Get("/{id}", s.handleGetGoal)
		r.Patch("/{id}", s.handleUpdateGoal)
		r.Delete("/{id}", s.handleDeleteGoal)
		r.Post("/{id}/plan", s.handleGeneratePlan)
		r.Get("/{id}/calendar", s.handleCalendar)
	})

	s.router.Patch("/api/v1/sessions/{id}", s.handleUpdateSession)
}
