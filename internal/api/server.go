// Package api provides the HTTP server for SnapSolve.
// It exposes the progression engine to the UI layer as a localhost JSON API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snapsolve/snapsolve/internal/app/entitlement"
	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/app/reminder"
	"github.com/snapsolve/snapsolve/internal/health"
)

// Version is reported by /api/version.
const Version = "0.1.0"

// Server is the SnapSolve HTTP API server.
type Server struct {
	progression    *progression.Service
	purchases      *entitlement.Service
	reminders      *reminder.Service // nil disables the reminder routes
	health         *health.Checker
	validator      *validator.Validate
	log            *slog.Logger
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(prog *progression.Service, purchases *entitlement.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		progression: prog,
		purchases:   purchases,
		validator:   validator.New(),
		log:         logger.With("component", "api"),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetReminders mounts the reminder queue routes.
func (s *Server) SetReminders(r *reminder.Service) { s.reminders = r }

// SetHealth reports checker results from /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": Version,
		})
	})

	r.Route("/api/progression", func(r chi.Router) {
		r.Post("/solves", s.handleRecordSolve)
		r.Get("/status", s.handleStatus)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/achievements/{id}/progress", s.handlePreviewProgress)
		r.Post("/achievements/ack", s.handleAcknowledge)
		r.Get("/cosmetics", s.handleCosmetics)
		r.Post("/entitlement", s.handleEntitlement)
		r.Post("/credits", s.handleCredits)
		r.Get("/purchases", s.handlePurchases)
		r.Post("/reset", s.handleReset)

		if s.reminders != nil {
			r.Get("/reminders", s.handleReminders)
			r.Post("/reminders/{id}/shown", s.handleReminderShown)
		}
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	if !s.health.IsHealthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"checks": s.health.Statuses(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"checks": s.health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	})
}

// corsMiddleware adds CORS headers for the local UI shell.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
