// Package http exposes the ledger services as a JSON REST API under /api/v1.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finledger/internal/log"
	"finledger/internal/middleware/auth"
	"finledger/internal/middleware/ratelimit"
	"finledger/internal/middleware/security"
	"finledger/internal/middleware/trace"
	"finledger/internal/services"
)

// Pinger reports database reachability for readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the cross-cutting middleware.
type Options struct {
	RateLimitPerMin   int
	CORSAllowedOrigin string
	Logger            *log.Logger
}

type Server struct {
	http.Server

	svc         *services.Registry
	db          Pinger
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer builds the router and returns a server ready for ListenAndServe.
func NewServer(addr string, svc *services.Registry, db Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:         svc,
		db:          db,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMin}),
		detector:    security.NewDetector(),
		tracer:      trace.NewMiddleware(),
		started:     time.Now(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFrom))
	r.Use(log.AccessLog)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.CORS(opts.CORSAllowedOrigin, auth.HeaderUserID, trace.HeaderRequestID))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(func(w http.ResponseWriter, r *http.Request) {
			respondMessage(w, http.StatusUnauthorized, "missing or invalid user id")
		}))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.With(limited).Post("/", s.handleCreateAccount)
			r.Get("/{id}", s.handleAccountDetail)
			r.With(limited).Patch("/{id}", s.handleUpdateAccount)
			r.With(limited).Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.With(limited).Post("/", s.handleCreateTransaction)
		})

		r.Get("/expenses/monthly", s.handleMonthlyExpenses)
		r.Get("/expenses/breakdown", s.handleExpenseBreakdown)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleUserGoals)
			r.With(limited).Post("/", s.handleCreateGoal)
			r.Get("/savings-summary", s.handleGoalSavingsSummary)
			r.With(limited).Patch("/{id}", s.handleUpdateGoal)
		})

		r.Get("/savings/summary", s.handleSavingsSummary)
		r.Get("/categories", s.handleListCategories)
		r.Get("/bills", s.handleListBills)
	})

	return r
}

// Shutdown stops accepting requests and releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "HTTP server shutting down", log.FieldOperation, log.OpShutdown)
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 until the database answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
			"rejected":       s.rateLimiter.GetMetrics().Rejected,
		},
		"requests": s.tracer.GetMetrics().TotalRequests,
	}

	if s.db == nil {
		checks["database"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.db.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		checks["database"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	respondJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
