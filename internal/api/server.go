// Package api serves the credit dashboard JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/config"
	"github.com/sells-group/credit-cli/internal/dashboard"
	"github.com/sells-group/credit-cli/internal/metrics"
	"github.com/sells-group/credit-cli/internal/onboarding"
	"github.com/sells-group/credit-cli/internal/scoring"
	"github.com/sells-group/credit-cli/internal/store"
	"github.com/sells-group/credit-cli/pkg/backend"
)

// fetchFailed is the only message clients see when the backend fails.
const fetchFailed = "failed to fetch data"

// Deps are the collaborators the server needs. Store and Metrics may be nil.
type Deps struct {
	Backend  backend.Client
	Store    store.Store
	Metrics  *metrics.Metrics
	Sessions *onboarding.Sessions
	Policies scoring.Policies
	Server   config.ServerConfig
	Locale   string
}

// Server is the HTTP API server.
type Server struct {
	backend  backend.Client
	store    store.Store
	metrics  *metrics.Metrics
	sessions *onboarding.Sessions
	policies scoring.Policies
	views    *dashboard.Builder
	cfg      config.ServerConfig
	locale   string
	limiter  *clientLimiter
	now      func() time.Time
}

// NewServer creates an API server.
func NewServer(d Deps) *Server {
	sessions := d.Sessions
	if sessions == nil {
		sessions = onboarding.NewSessions(time.Hour)
	}
	dashPath := d.Server.DashboardPath
	if dashPath == "" {
		dashPath = "/dashboard"
	}
	d.Server.DashboardPath = dashPath

	bc := d.Backend
	if d.Metrics != nil && bc != nil {
		bc = d.Metrics.InstrumentBackend(bc)
	}

	return &Server{
		backend:  bc,
		store:    d.Store,
		metrics:  d.Metrics,
		sessions: sessions,
		policies: d.Policies,
		views:    dashboard.NewBuilder(d.Policies),
		cfg:      d.Server,
		locale:   d.Locale,
		limiter:  newClientLimiter(d.Server.RateLimitRPS, d.Server.RateLimitBurst),
		now:      time.Now,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	if s.metrics != nil && s.cfg.Metrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/dashboard/report.pdf", s.handleDashboardReport)

		r.Get("/history", s.handleHistory)
		r.Get("/history/export.xlsx", s.handleHistoryXLSX)
		r.Get("/history/export.csv", s.handleHistoryCSV)

		r.Get("/onboarding/steps", s.handleOnboardingSteps)
		r.Get("/onboarding/{id}", s.handleOnboardingGet)
		r.Get("/assessments", s.handleListAssessments)

		// Writes are rate limited per client.
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.middleware)

			r.Post("/estimate", s.handleEstimate)
			r.Post("/calculate", s.handleCalculate)

			r.Post("/onboarding", s.handleOnboardingCreate)
			r.Post("/onboarding/{id}/actions", s.handleOnboardingActions)
			r.Post("/onboarding/{id}/submit", s.handleOnboardingSubmit)

			r.Post("/contact", s.handleContact)
		})
	})

	return r
}

// RunJanitor sweeps idle onboarding sessions and rate limiter entries until
// ctx is done.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.sessions.Sweep(); n > 0 {
				zap.L().Debug("swept onboarding sessions", zap.Int("removed", n))
			}
			s.limiter.sweep(s.now().Add(-10 * time.Minute))
			if s.metrics != nil {
				s.metrics.OnboardingSessions.Set(float64(s.sessions.Len()))
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "store": "disabled"}
	code := http.StatusOK
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			zap.L().Warn("health: store ping failed", zap.Error(err))
			status["status"] = "degraded"
			status["store"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			status["store"] = "ok"
		}
	}
	writeJSON(w, code, status)
}
