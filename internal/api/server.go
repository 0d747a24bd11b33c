// Package api implements the REST handlers for registrations.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodregister/regnotify/internal/service"
)

// Server holds all dependencies for the REST API handlers.
type Server struct {
	registrationSvc service.RegistrationService
	logger          *slog.Logger
}

// New creates a new API Server backed by the provided service.
func New(registrationSvc service.RegistrationService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registrationSvc: registrationSvc,
		logger:          logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/registrations", s.handleSubmit)
	r.Get("/registrations/{fsaID}", s.handleGet)
	r.Post("/registrations/{fsaID}/resend", s.handleResend)
	r.Get("/registrations/{fsaID}/deliveries", s.handleListDeliveries)
	r.Get("/registrations/pending", s.handleListPending)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
