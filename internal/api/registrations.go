package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foodregister/regnotify/internal/dispatch"
	"github.com/foodregister/regnotify/internal/registration"
	"github.com/foodregister/regnotify/internal/service"
)

const defaultListLimit = 50

type submitRequest struct {
	LocalCouncilURL string            `json:"local_council_url"`
	Registration    registration.View `json:"registration"`
}

// handleSubmit accepts a new registration, persists it and dispatches its
// notifications.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.registrationSvc.Submit(r.Context(), &req.Registration, req.LocalCouncilURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubmission),
			errors.Is(err, service.ErrUnknownCouncil):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, "submission failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGet returns a stored registration.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	fsaID := chi.URLParam(r, "fsaID")

	rec, err := s.registrationSvc.Get(r.Context(), fsaID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("fetching registration failed", "fsa_id", fsaID, "error", err)
		writeError(w, http.StatusInternalServerError, "fetching registration failed")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleResend re-drives notification dispatch for a registration.
func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	fsaID := chi.URLParam(r, "fsaID")

	err := s.registrationSvc.Resend(r.Context(), fsaID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, dispatch.ErrStatusMismatch):
			writeError(w, http.StatusConflict, err.Error())
		default:
			s.logger.Error("resend failed", "fsa_id", fsaID, "error", err)
			writeError(w, http.StatusInternalServerError, "resend failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDeliveries returns the send-attempt audit trail for a registration.
func (s *Server) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	fsaID := chi.URLParam(r, "fsaID")

	entries, err := s.registrationSvc.ListDeliveries(r.Context(), fsaID, limitParam(r))
	if err != nil {
		s.logger.Error("listing deliveries failed", "fsa_id", fsaID, "error", err)
		writeError(w, http.StatusInternalServerError, "listing deliveries failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deliveries": entries})
}

// handleListPending returns registrations that still have unsent notifications.
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	ids, err := s.registrationSvc.ListPending(r.Context(), limitParam(r))
	if err != nil {
		s.logger.Error("listing pending registrations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing pending registrations failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"fsa_ids": ids})
}

func limitParam(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultListLimit
}
